package domain

import "time"

// OrderItem is a product line. Rows with a nil OrderID are the owning user's
// cart; checkout will later attach them to an Order.
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Price     *float64  `json:"price"`
	OrderID   *string   `gorm:"size:36;index" json:"orderId"`
	UserID    *string   `gorm:"size:36;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

const (
	PaymentPending = "PENDING"
	PaymentSuccess = "SUCCESS"
	PaymentFailed  = "FAILED"
)

// PaymentAttempt is checkout schema only; nothing writes it yet.
type PaymentAttempt struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"size:36;index;not null" json:"userId"`
	Amount         float64   `gorm:"not null" json:"amount"`
	Status         string    `gorm:"size:32;not null;default:PENDING" json:"status"`
	PaymentGateway string    `gorm:"size:64;not null" json:"paymentGateway"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}

// Order is checkout schema only; nothing writes it yet.
type Order struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Status    string    `gorm:"size:32" json:"status"`
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	Amount    *float64  `json:"amount"`
	AttemptID *string   `gorm:"size:36" json:"attemptId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

// CartItem is the displayed cart projection: a live line joined with its
// product's current catalog fields.
type CartItem struct {
	ID            int64      `json:"id"`
	ProductID     int64      `json:"productId"`
	Quantity      int        `json:"quantity"`
	Price         *float64   `json:"price"`
	Name          string     `json:"name"`
	Description   *string    `json:"description"`
	Images        StringList `json:"images"`
	ProductPrice  *float64   `json:"productPrice"`
	OriginalPrice *float64   `json:"originalPrice"`
	Stock         int        `json:"stock"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
