package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is stored as text[] on postgres and as the same array literal
// in a text column elsewhere.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "{}", nil
	}
	return pq.StringArray(l).Value()
}

func (l *StringList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*l = StringList(arr)
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// GormDBDataType picks the column type per dialect.
func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Product catalog entry. DeletedAt marks a soft delete; rows are kept for
// order history and must be filtered out of every current read.
type Product struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string     `gorm:"not null;index" json:"name"`
	Description   *string    `json:"description"`
	Price         *float64   `json:"price"`
	OriginalPrice *float64   `json:"originalPrice"`
	Images        StringList `json:"images"`
	Tags          StringList `json:"tags"`
	Stock         int        `gorm:"not null" json:"stock"`
	Active        bool       `gorm:"not null;index" json:"active"`
	DeletedAt     *time.Time `gorm:"index" json:"deletedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// CartPrice is the price captured onto a cart line.
func (p *Product) CartPrice() *float64 {
	if p.Price != nil {
		return p.Price
	}
	return p.OriginalPrice
}
