package dto

import (
	"time"

	"margem/internal/domain/sales"
)

// CreateSaleRequest is the payload for POST /sales (manual entry).
type CreateSaleRequest struct {
	ProductID   int64   `json:"productId" binding:"required"`
	SaleDate    *string `json:"saleDate"`
	Quantity    int     `json:"quantity" binding:"required"`
	UnitPrice   string  `json:"unitPrice" binding:"required"`
	Revenue     string  `json:"revenue" binding:"required"`
	Commission  string  `json:"commission"`
	OrderNumber *string `json:"orderNumber"`
}

// ListSalesQuery holds sale listing parameters.
type ListSalesQuery struct {
	ListQuery
	ProductID *int64  `form:"productId"`
	Channel   *string `form:"channel"`
	BatchID   *string `form:"batchId"`
	FromDate  *string `form:"fromDate"`
	ToDate    *string `form:"toDate"`
}

// SaleResponse is the API view of a sale record.
type SaleResponse struct {
	ID                 int64      `json:"id"`
	ProductID          int64      `json:"productId"`
	SaleDate           *time.Time `json:"saleDate,omitempty"`
	Quantity           int        `json:"quantity"`
	UnitPrice          string     `json:"unitPrice"`
	Revenue            string     `json:"revenue"`
	Cost               string     `json:"cost"`
	Commission         string     `json:"commission"`
	ContributionMargin string     `json:"contributionMargin"`
	Channel            string     `json:"channel"`
	OrderNumber        *string    `json:"orderNumber,omitempty"`
	BatchID            *string    `json:"batchId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// FromSale converts a domain sale record to its API view.
func FromSale(s *sales.SaleRecord) SaleResponse {
	return SaleResponse{
		ID:                 s.ID,
		ProductID:          s.ProductID,
		SaleDate:           s.SaleDate,
		Quantity:           s.Quantity,
		UnitPrice:          s.UnitPrice.StringFixed(2),
		Revenue:            s.Revenue.StringFixed(2),
		Cost:               s.Cost.StringFixed(2),
		Commission:         s.Commission.StringFixed(2),
		ContributionMargin: s.ContributionMargin.StringFixed(2),
		Channel:            string(s.Channel),
		OrderNumber:        s.OrderNumber,
		BatchID:            s.BatchID,
		CreatedAt:          s.CreatedAt,
	}
}

// FromSales converts a sale slice.
func FromSales(records []sales.SaleRecord) []SaleResponse {
	out := make([]SaleResponse, 0, len(records))
	for i := range records {
		out = append(out, FromSale(&records[i]))
	}
	return out
}

// RevertBatchResponse reports how many sales a batch revert removed.
type RevertBatchResponse struct {
	BatchID  string `json:"batchId"`
	Reverted int    `json:"reverted"`
}
