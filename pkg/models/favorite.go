package models

type EntryStatus string

const (
	EntryStatusProvisional EntryStatus = "provisional"
	EntryStatusConfirmed   EntryStatus = "confirmed"
)

type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusError   SyncStatus = "error"
)

type ProductSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
}

// FavoriteEntry is one favorited product. A provisional entry is a local
// optimistic guess that has not been confirmed by the server yet; it is
// replaced wholesale on reconciliation, never merged field by field.
type FavoriteEntry struct {
	ProductID string          `json:"product_id"`
	Product   *ProductSummary `json:"product,omitempty"`
	Status    EntryStatus     `json:"status,omitempty"`
}

// FavoritesPayload is the data portion of every favorites service
// response: the authoritative list and its count.
type FavoritesPayload struct {
	Favorites []FavoriteEntry `json:"favorites"`
	Count     int             `json:"count"`
}
