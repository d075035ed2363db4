package common

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
)

// Options is the flat set of run options read once per run and passed by
// value into extraction and cropping. It is never mutated after load.
type Options struct {
	// Marketplace selects the label format (anchor phrases, extraction style).
	Marketplace string `json:"marketplace"`

	// Sort toggles. The primary key is always IsMulti; each secondary key
	// carries its own direction, applied in fixed precedence sku > courier >
	// soldBy.
	MultiFirst       bool `json:"multi_first"`
	SKUSort          bool `json:"sku_sort"`
	SKUAscending     bool `json:"sku_ascending"`
	CourierSort      bool `json:"courier_sort"`
	CourierAscending bool `json:"courier_ascending"`
	SoldBySort       bool `json:"soldBy_sort"`
	SoldByAscending  bool `json:"soldBy_ascending"`

	// Crop behavior.
	KeepInvoice   bool `json:"keep_invoice"`
	CombinedSheet bool `json:"combined_sheet"`
	AddDateOnTop  bool `json:"add_date_on_top"`

	// Geometry overrides. Zero means "use the marketplace profile value".
	LabelFallbackRatio   float64 `json:"label_fallback_ratio"`
	InvoiceFallbackRatio float64 `json:"invoice_fallback_ratio"`
	LabelTopMargin       float64 `json:"label_top_margin"`
	LabelSideMargin      float64 `json:"label_side_margin"`
	AnchorPad            float64 `json:"anchor_pad"`

	// Workers caps per-page extraction parallelism. Zero means NumCPU.
	Workers int `json:"workers"`
}

// DefaultOptions returns the documented defaults; partial config files are
// decoded on top of this value so missing keys keep their defaults.
func DefaultOptions() Options {
	return Options{
		Marketplace:          "meesho",
		MultiFirst:           true,
		SKUSort:              true,
		SKUAscending:         false,
		CourierSort:          true,
		CourierAscending:     true,
		SoldBySort:           true,
		SoldByAscending:      true,
		KeepInvoice:          false,
		CombinedSheet:        false,
		AddDateOnTop:         false,
		LabelFallbackRatio:   0.25,
		InvoiceFallbackRatio: 0.5,
	}
}

// EffectiveWorkers resolves the worker count, defaulting to NumCPU.
func (o Options) EffectiveWorkers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// LoadOptions reads a config.json from path and decodes it on top of the
// defaults. A missing file yields the defaults with a warning. The document
// is schema-validated before decoding; unknown keys are ignored.
func LoadOptions(path string, logger *slog.Logger) (Options, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := DefaultOptions()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("config.missing_using_defaults", "path", path)
			return opts, nil
		}
		return opts, WrapError(err, "read config")
	}

	if err := ValidateJSONAgainstSchema(BuildOptionsSchema(), raw); err != nil {
		return opts, NewAppError("CONFIG_ERROR", "config.json rejected", err)
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return opts, WrapError(err, "decode config")
	}

	// Sheet composition stacks label over invoice, so it needs the invoice
	// pages present.
	if opts.CombinedSheet && !opts.KeepInvoice {
		logger.Warn("config.combined_sheet_ignored_without_keep_invoice")
	}

	logger.Info("config.loaded",
		"path", path,
		"marketplace", opts.Marketplace,
		"sku_sort", opts.SKUSort,
		"courier_sort", opts.CourierSort,
		"soldBy_sort", opts.SoldBySort,
		"keep_invoice", opts.KeepInvoice,
	)
	return opts, nil
}
