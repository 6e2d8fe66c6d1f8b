package provider

import (
	"slices"
)

// Vendor identifies an API vendor.
type Vendor string

const (
	VendorOpenAI Vendor = "openai"
	VendorGoogle Vendor = "google"
)

// chatModels is the closed routing table. Every model id the
// application accepts must appear here; resolution never falls back.
var chatModels = map[string]Vendor{
	"gpt-5-mini":             VendorOpenAI,
	"gpt-5":                  VendorOpenAI,
	"gpt-5.2":                VendorOpenAI,
	"gpt-4o":                 VendorOpenAI,
	"gpt-4o-mini":            VendorOpenAI,
	"o3-mini":                VendorOpenAI,
	"o4-mini":                VendorOpenAI,
	"gemini-3-flash-preview": VendorGoogle,
	"gemini-3.1-pro-preview": VendorGoogle,
	"gemini-2.5-flash":       VendorGoogle,
	"gemini-2.0-flash":       VendorGoogle,
}

// VendorFor resolves a chat model id to its vendor. Unknown ids fail
// with *UnknownModelError.
func VendorFor(model string) (Vendor, error) {
	v, ok := chatModels[model]
	if !ok {
		return "", &UnknownModelError{Model: model}
	}
	return v, nil
}

// KnownModel reports whether the model id is in the routing table.
func KnownModel(model string) bool {
	_, ok := chatModels[model]
	return ok
}

// ChatModels returns the accepted model ids in sorted order, for
// display and validation.
func ChatModels() []string {
	out := make([]string, 0, len(chatModels))
	for m := range chatModels {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}
