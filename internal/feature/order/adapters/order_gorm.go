// Package adapters stores orders with gorm.
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/feature/order/domain/entity"
	"storefront/internal/feature/order/usecase"
)

// OrderModel is the row shape of orders.
type OrderModel struct {
	ID               uint             `gorm:"primaryKey"`
	UserID           uint             `gorm:"index;not null"`
	UserEmail        string           `gorm:"size:255;not null"`
	PaymentSessionID string           `gorm:"size:255;uniqueIndex;not null"`
	TotalAmount      decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Items            []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time        `gorm:"index"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is one snapshot line of an order.
type OrderItemModel struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null"`
	Position  int             `gorm:"not null"`
	ProductID uint            `gorm:"not null"`
	Title     string          `gorm:"size:255;not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity  int             `gorm:"not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

func (m *OrderModel) toEntity() entity.Order {
	o := entity.Order{
		ID:               m.ID,
		UserID:           m.UserID,
		UserEmail:        m.UserEmail,
		PaymentSessionID: m.PaymentSessionID,
		TotalAmount:      m.TotalAmount,
		CreatedAt:        m.CreatedAt,
		Items:            make([]entity.Item, len(m.Items)),
	}
	for i, it := range m.Items {
		o.Items[i] = entity.Item{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
		}
	}
	return o
}

func orderModelFromEntity(o *entity.Order) *OrderModel {
	m := &OrderModel{
		ID:               o.ID,
		UserID:           o.UserID,
		UserEmail:        o.UserEmail,
		PaymentSessionID: o.PaymentSessionID,
		TotalAmount:      o.TotalAmount,
		CreatedAt:        o.CreatedAt,
		Items:            make([]OrderItemModel, len(o.Items)),
	}
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{
			Position:  i,
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
		}
	}
	return m
}

type orderGorm struct {
	db *gorm.DB
}

var _ usecase.OrderRepository = (*orderGorm)(nil)

// NewOrderGorm returns an order repository backed by db.
func NewOrderGorm(db *gorm.DB) *orderGorm {
	return &orderGorm{db: db}
}

// Create inserts the order and its lines together.
func (r *orderGorm) Create(ctx context.Context, o *entity.Order) error {
	m := orderModelFromEntity(o)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrOrderExists
		}
		return err
	}
	o.ID = m.ID
	o.CreatedAt = m.CreatedAt
	return nil
}

func (r *orderGorm) FindByID(ctx context.Context, id uint) (*entity.Order, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *orderGorm) FindByPaymentSessionID(ctx context.Context, sessionID string) (*entity.Order, error) {
	return r.first(ctx, "payment_session_id = ?", sessionID)
}

func (r *orderGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Order, error) {
	var models []OrderModel
	if err := r.withItems(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Order, len(models))
	for i := range models {
		out[i] = models[i].toEntity()
	}
	return out, nil
}

func (r *orderGorm) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *orderGorm) first(ctx context.Context, query string, args ...any) (*entity.Order, error) {
	var m OrderModel
	if err := r.withItems(ctx).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrOrderNotFound
		}
		return nil, err
	}
	o := m.toEntity()
	return &o, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
