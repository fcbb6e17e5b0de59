// internal/models/shop.go
package models

import "time"

type Shop struct {
	ID           string    `json:"id"`
	VendorID     string    `json:"vendorId"`
	Name         string    `json:"name"`
	BusinessType string    `json:"businessType,omitempty"`
	Address      string    `json:"address,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Product struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendorId"`
	ShopID    string    `json:"shopId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}
