package models

import (
	"time"
)

// FlowType records how an order entered the system
type FlowType string

const (
	// FlowPredefined orders start from a catalog product
	FlowPredefined FlowType = "predefined"
	// FlowCustom orders come from the blank design wizard
	FlowCustom FlowType = "custom"
)

// ProductRef identifies the catalog product a predefined order starts from.
// The catalog is owned elsewhere; the reference is copied as-is.
type ProductRef struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Contact holds the customer's contact details
type Contact struct {
	Name    string `gorm:"not null" bson:"name" json:"name" validate:"required"`
	Phone   string `gorm:"not null" bson:"phone" json:"phone" validate:"required"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// DesignRequest is a customer order, either based on a catalog product or fully custom
type DesignRequest struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	HumanCode      string         `gorm:"uniqueIndex;not null;type:varchar(16)" bson:"humanCode" json:"humanCode"`
	FlowType       FlowType       `gorm:"not null;type:varchar(16)" bson:"flowType" json:"flowType"`
	ProductID      *string        `bson:"productId,omitempty" json:"productId"`
	ProductName    *string        `bson:"productName,omitempty" json:"productName"`
	Category       string         `bson:"category" json:"category"`
	Specifications Specifications `gorm:"type:text" bson:"specifications" json:"specifications"`
	Contact        Contact        `gorm:"embedded;embeddedPrefix:contact_" bson:"contact" json:"contact"`
	Budget         string         `bson:"budget" json:"budget"`
	Timeline       *string        `bson:"timeline,omitempty" json:"timeline,omitempty"`
	Status         OrderStatus    `gorm:"not null;default:'New';index;type:varchar(16)" bson:"status" json:"status"`
	Notes          NoteList       `gorm:"type:text" bson:"notes" json:"notes"`
	AttachmentKey  *string        `bson:"attachmentKey,omitempty" json:"-"`           // S3 key of the reference image
	AttachmentURL  *string        `gorm:"-" bson:"-" json:"attachmentUrl,omitempty"`  // computed, presigned URL
	Version        int64          `gorm:"not null;default:1" bson:"version" json:"-"` // optimistic concurrency for SQL stores
	CreatedAt      time.Time      `gorm:"index;autoCreateTime:false" bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime:false" bson:"updatedAt" json:"updatedAt"`
}

// TableName specifies the table name for the DesignRequest model
func (DesignRequest) TableName() string {
	return "design_requests"
}

// HasAttachment reports whether a reference image was uploaded
func (d *DesignRequest) HasAttachment() bool {
	return d.AttachmentKey != nil && *d.AttachmentKey != ""
}

// Progress is the position of the order on the tracking progress bar, -1 when cancelled
func (d *DesignRequest) Progress() int {
	return ProgressIndex(d.Status)
}
