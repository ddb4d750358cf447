package action

import "errors"

// Reference identifies another resource by id or key.
type Reference struct {
	TypeID string `json:"typeId"`
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
}

// AssetTarget addresses an asset by id or key.
type AssetTarget struct {
	AssetID  string `json:"assetId,omitempty"`
	AssetKey string `json:"assetKey,omitempty"`
}

func (t AssetTarget) validate() error {
	if t.AssetID == "" && t.AssetKey == "" {
		return errors.New("asset id or key required")
	}
	return nil
}

// Country carries a two-letter country code. Empty unsets the country.
type Country struct {
	Country string `json:"country,omitempty"`
}

// DeliveryID addresses a delivery.
type DeliveryID struct {
	DeliveryID string `json:"deliveryId"`
}

func (d DeliveryID) validate() error {
	if d.DeliveryID == "" {
		return errors.New("delivery id required")
	}
	return nil
}
