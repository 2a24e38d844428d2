package stocktake

import "errors"

var (
	// ErrActiveStocktakeExists is returned when stocktake creation is
	// attempted while another stocktake is still active.
	ErrActiveStocktakeExists = errors.New("an active stocktake already exists")

	// ErrStocktakeNotActive is returned when a mutation targets a stocktake
	// that is completed or is not the current active one. No state changes.
	ErrStocktakeNotActive = errors.New("stocktake is not active")

	// ErrNoActiveStocktake is returned when an operation needs the current
	// active stocktake and none exists.
	ErrNoActiveStocktake = errors.New("no active stocktake")

	// ErrStocktakeNotFound is returned when the referenced stocktake does
	// not exist.
	ErrStocktakeNotFound = errors.New("stocktake not found")

	// ErrImportFailed wraps theoretical baseline / barcode mapping import
	// failures. Fatal for stocktake creation: no stocktake record is created.
	ErrImportFailed = errors.New("import failed")
)
