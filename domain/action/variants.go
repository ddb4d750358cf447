package action

import (
	"errors"

	"github.com/artpar/commercekit/core/model"
)

// SetKey sets or, when empty, removes the resource key.
type SetKey struct {
	variant
	Key string `json:"key,omitempty"`
}

func (SetKey) ActionName() string         { return "setKey" }
func (a SetKey) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetKey) MarshalJSON() ([]byte, error) {
	type plain SetKey
	return encode(a.ActionName(), plain(a))
}

// SetName sets the localized store name.
type SetName struct {
	variant
	Name model.LocalizedString `json:"name,omitempty"`
}

func (SetName) ActionName() string         { return "setName" }
func (a SetName) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetName) MarshalJSON() ([]byte, error) {
	type plain SetName
	return encode(a.ActionName(), plain(a))
}

// SetLanguages sets the languages of a store.
type SetLanguages struct {
	variant
	Languages []string `json:"languages"`
}

func (SetLanguages) ActionName() string         { return "setLanguages" }
func (a SetLanguages) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetLanguages) MarshalJSON() ([]byte, error) {
	type plain SetLanguages
	if a.Languages == nil {
		a.Languages = []string{}
	}
	return encode(a.ActionName(), plain(a))
}

// ChangeName replaces a required localized name.
type ChangeName struct {
	variant
	Name model.LocalizedString `json:"name"`
}

func (ChangeName) ActionName() string         { return "changeName" }
func (a ChangeName) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a ChangeName) MarshalJSON() ([]byte, error) {
	type plain ChangeName
	return encode(a.ActionName(), plain(a))
}
func (a ChangeName) validate() error { return requireLocalized(a.Name, "name") }

// ChangeSlug replaces the localized slug.
type ChangeSlug struct {
	variant
	Slug model.LocalizedString `json:"slug"`
}

func (ChangeSlug) ActionName() string         { return "changeSlug" }
func (a ChangeSlug) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a ChangeSlug) MarshalJSON() ([]byte, error) {
	type plain ChangeSlug
	return encode(a.ActionName(), plain(a))
}
func (a ChangeSlug) validate() error { return requireLocalized(a.Slug, "slug") }

// ChangeOrderHint sets the sort hint, a decimal between 0 and 1.
type ChangeOrderHint struct {
	variant
	OrderHint string `json:"orderHint"`
}

func (ChangeOrderHint) ActionName() string         { return "changeOrderHint" }
func (a ChangeOrderHint) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a ChangeOrderHint) MarshalJSON() ([]byte, error) {
	type plain ChangeOrderHint
	return encode(a.ActionName(), plain(a))
}
func (a ChangeOrderHint) validate() error {
	if a.OrderHint == "" {
		return errors.New("orderHint required")
	}
	return nil
}

// ChangeParent moves a category below another category.
type ChangeParent struct {
	variant
	Parent Reference `json:"parent"`
}

func (ChangeParent) ActionName() string         { return "changeParent" }
func (a ChangeParent) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a ChangeParent) MarshalJSON() ([]byte, error) {
	type plain ChangeParent
	if a.Parent.TypeID == "" {
		a.Parent.TypeID = "category"
	}
	return encode(a.ActionName(), plain(a))
}
func (a ChangeParent) validate() error {
	if a.Parent.ID == "" && a.Parent.Key == "" {
		return errors.New("parent id or key required")
	}
	return nil
}

// SetDescription sets or removes the localized description.
type SetDescription struct {
	variant
	Description model.LocalizedString `json:"description,omitempty"`
}

func (SetDescription) ActionName() string         { return "setDescription" }
func (a SetDescription) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetDescription) MarshalJSON() ([]byte, error) {
	type plain SetDescription
	return encode(a.ActionName(), plain(a))
}

// SetExternalID sets or removes the external id.
type SetExternalID struct {
	variant
	ExternalID string `json:"externalId,omitempty"`
}

func (SetExternalID) ActionName() string         { return "setExternalId" }
func (a SetExternalID) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetExternalID) MarshalJSON() ([]byte, error) {
	type plain SetExternalID
	return encode(a.ActionName(), plain(a))
}

// SetMetaTitle sets or removes the localized meta title.
type SetMetaTitle struct {
	variant
	MetaTitle model.LocalizedString `json:"metaTitle,omitempty"`
}

func (SetMetaTitle) ActionName() string         { return "setMetaTitle" }
func (a SetMetaTitle) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetMetaTitle) MarshalJSON() ([]byte, error) {
	type plain SetMetaTitle
	return encode(a.ActionName(), plain(a))
}

// SetMetaDescription sets or removes the localized meta description.
type SetMetaDescription struct {
	variant
	MetaDescription model.LocalizedString `json:"metaDescription,omitempty"`
}

func (SetMetaDescription) ActionName() string         { return "setMetaDescription" }
func (a SetMetaDescription) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetMetaDescription) MarshalJSON() ([]byte, error) {
	type plain SetMetaDescription
	return encode(a.ActionName(), plain(a))
}

// SetMetaKeywords sets or removes the localized meta keywords.
type SetMetaKeywords struct {
	variant
	MetaKeywords model.LocalizedString `json:"metaKeywords,omitempty"`
}

func (SetMetaKeywords) ActionName() string         { return "setMetaKeywords" }
func (a SetMetaKeywords) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetMetaKeywords) MarshalJSON() ([]byte, error) {
	type plain SetMetaKeywords
	return encode(a.ActionName(), plain(a))
}

// AddAsset adds an asset draft, optionally at a position.
type AddAsset struct {
	variant
	Asset    model.Model `json:"asset"`
	Position *int        `json:"position,omitempty"`
}

func (AddAsset) ActionName() string         { return "addAsset" }
func (a AddAsset) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a AddAsset) MarshalJSON() ([]byte, error) {
	type plain AddAsset
	return encode(a.ActionName(), plain(a))
}
func (a AddAsset) validate() error {
	if a.Asset == nil || a.Asset.Object() == nil {
		return errors.New("asset required")
	}
	return nil
}

// RemoveAsset removes an asset.
type RemoveAsset struct {
	variant
	AssetTarget
}

func (RemoveAsset) ActionName() string         { return "removeAsset" }
func (a RemoveAsset) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a RemoveAsset) MarshalJSON() ([]byte, error) {
	type plain RemoveAsset
	return encode(a.ActionName(), plain(a))
}

// ChangeAssetName replaces the localized name of an asset.
type ChangeAssetName struct {
	variant
	AssetTarget
	Name model.LocalizedString `json:"name"`
}

func (ChangeAssetName) ActionName() string         { return "changeAssetName" }
func (a ChangeAssetName) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a ChangeAssetName) MarshalJSON() ([]byte, error) {
	type plain ChangeAssetName
	return encode(a.ActionName(), plain(a))
}
func (a ChangeAssetName) validate() error {
	if err := a.AssetTarget.validate(); err != nil {
		return err
	}
	return requireLocalized(a.Name, "name")
}

// SetAssetDescription sets or removes the localized asset description.
type SetAssetDescription struct {
	variant
	AssetTarget
	Description model.LocalizedString `json:"description,omitempty"`
}

func (SetAssetDescription) ActionName() string         { return "setAssetDescription" }
func (a SetAssetDescription) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetAssetDescription) MarshalJSON() ([]byte, error) {
	type plain SetAssetDescription
	return encode(a.ActionName(), plain(a))
}

// SetAssetKey sets or removes the key of the asset with AssetID.
type SetAssetKey struct {
	variant
	AssetID  string `json:"assetId"`
	AssetKey string `json:"assetKey,omitempty"`
}

func (SetAssetKey) ActionName() string         { return "setAssetKey" }
func (a SetAssetKey) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetAssetKey) MarshalJSON() ([]byte, error) {
	type plain SetAssetKey
	return encode(a.ActionName(), plain(a))
}
func (a SetAssetKey) validate() error {
	if a.AssetID == "" {
		return errors.New("asset id required")
	}
	return nil
}

// SetAssetTags replaces the tags of an asset.
type SetAssetTags struct {
	variant
	AssetTarget
	Tags []string `json:"tags,omitempty"`
}

func (SetAssetTags) ActionName() string         { return "setAssetTags" }
func (a SetAssetTags) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetAssetTags) MarshalJSON() ([]byte, error) {
	type plain SetAssetTags
	return encode(a.ActionName(), plain(a))
}

// SetAssetSources replaces the sources of an asset.
type SetAssetSources struct {
	variant
	AssetTarget
	Sources []model.Model `json:"sources"`
}

func (SetAssetSources) ActionName() string         { return "setAssetSources" }
func (a SetAssetSources) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetAssetSources) MarshalJSON() ([]byte, error) {
	type plain SetAssetSources
	if a.Sources == nil {
		a.Sources = []model.Model{}
	}
	return encode(a.ActionName(), plain(a))
}
func (a SetAssetSources) validate() error {
	if err := a.AssetTarget.validate(); err != nil {
		return err
	}
	if len(a.Sources) == 0 {
		return errors.New("at least one source required")
	}
	return nil
}

// SetCountry sets or removes the country of a cart or staged order.
type SetCountry struct {
	variant
	Country
}

func (SetCountry) ActionName() string         { return "setCountry" }
func (a SetCountry) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetCountry) MarshalJSON() ([]byte, error) {
	type plain SetCountry
	return encode(a.ActionName(), plain(a))
}

// SetCustomerEmail sets or removes the customer email.
type SetCustomerEmail struct {
	variant
	Email string `json:"email,omitempty"`
}

func (SetCustomerEmail) ActionName() string         { return "setCustomerEmail" }
func (a SetCustomerEmail) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetCustomerEmail) MarshalJSON() ([]byte, error) {
	type plain SetCustomerEmail
	return encode(a.ActionName(), plain(a))
}

// RemoveDelivery removes a delivery from a staged order.
type RemoveDelivery struct {
	variant
	DeliveryID
}

func (RemoveDelivery) ActionName() string         { return "removeDelivery" }
func (a RemoveDelivery) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a RemoveDelivery) MarshalJSON() ([]byte, error) {
	type plain RemoveDelivery
	return encode(a.ActionName(), plain(a))
}

// SetCustomField sets or, with a nil value, removes a custom field.
type SetCustomField struct {
	variant
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`
}

func (SetCustomField) ActionName() string         { return "setCustomField" }
func (a SetCustomField) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a SetCustomField) MarshalJSON() ([]byte, error) {
	type plain SetCustomField
	return encode(a.ActionName(), plain(a))
}
func (a SetCustomField) validate() error {
	if a.Name == "" {
		return errors.New("name required")
	}
	return nil
}

func requireLocalized(ls model.LocalizedString, field string) error {
	if len(ls) == 0 {
		return errors.New(field + " required")
	}
	return nil
}

// AddStagedAction appends a staged order action to an order edit.
type AddStagedAction struct {
	variant
	StagedAction Action `json:"stagedAction"`
}

func (AddStagedAction) ActionName() string         { return "addStagedAction" }
func (a AddStagedAction) Supports(r Resource) bool { return supports(a.ActionName(), r) }
func (a AddStagedAction) MarshalJSON() ([]byte, error) {
	type plain AddStagedAction
	return encode(a.ActionName(), plain(a))
}
func (a AddStagedAction) validate() error {
	if a.StagedAction == nil {
		return errors.New("staged action required")
	}
	if !a.StagedAction.Supports(StagedOrder) {
		return errors.New(a.StagedAction.ActionName() + " is not a staged order action")
	}
	return Validate(a.StagedAction)
}
