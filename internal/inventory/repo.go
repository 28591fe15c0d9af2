package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db/models"
)

// Repository exposes the persistence operations the inventory service needs.
type Repository interface {
	Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error)
	List(ctx context.Context) ([]models.InventoryItem, error)
	Save(ctx context.Context, item *models.InventoryItem) error
	ApplyDeduction(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindIngredientsForOrder(ctx context.Context, orderID uuid.UUID) ([]OrderIngredient, error)
}

// OrderIngredient joins one order line item against the inventory it consumes.
type OrderIngredient struct {
	InventoryItemID uuid.UUID
	Quantity        int
	QuantityPerUnit decimal.Decimal
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) List(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Save(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// ApplyDeduction decrements stock atomically per row. The guard keeps a
// concurrent double-deduct from driving stock negative.
func (r *repository) ApplyDeduction(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND current_stock >= ?", id, quantity).
		Update("current_stock", gorm.Expr("current_stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryItem{}).Error
}

func (r *repository) FindIngredientsForOrder(ctx context.Context, orderID uuid.UUID) ([]OrderIngredient, error) {
	var rows []OrderIngredient
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("menu_item_ingredients.inventory_item_id, order_items.quantity, menu_item_ingredients.quantity_per_unit").
		Joins("JOIN menu_item_ingredients ON menu_item_ingredients.menu_item_id = order_items.menu_item_id").
		Where("order_items.order_id = ?", orderID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
