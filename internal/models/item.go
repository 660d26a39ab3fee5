package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a catalog entry. Only the fields the order workflows read are mapped.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	OnlinePrice float64            `bson:"online_price" json:"online_price"`
	ItemImages  StringList         `bson:"item_images" json:"item_images"`
	CategoryID  primitive.ObjectID `bson:"category_id,omitempty" json:"category_id,omitempty"`
	IsDeleted   bool               `bson:"is_deleted" json:"is_deleted,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// CoverImage is the first image, or "" when the item has none.
func (i *Item) CoverImage() string {
	if len(i.ItemImages) == 0 {
		return ""
	}
	return i.ItemImages[0]
}
