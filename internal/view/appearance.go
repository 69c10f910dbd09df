package view

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// Appearance holds extra Tailwind classes for each part of the widget.
// Overrides are merged into the defaults, so a conflicting utility (say a
// different background colour) replaces the default rather than competing
// with it.
type Appearance struct {
	Container      string
	ProviderList   string
	ProviderButton string
	Divider        string
	Form           string
	Label          string
	Input          string
	Button         string
	Links          string
	Anchor         string
	Message        string
	Error          string
}

// DefaultAppearance is the stock look of the widget.
func DefaultAppearance() Appearance {
	return Appearance{
		Container:      "w-full max-w-sm mx-auto",
		ProviderList:   "flex flex-col gap-2 my-2",
		ProviderButton: "flex justify-center items-center gap-2 rounded-md text-sm p-1 cursor-pointer border border-zinc-950 w-full disabled:opacity-70 disabled:cursor-[unset] bg-transparent text-black hover:bg-stone-100",
		Divider:        "block my-4 h-px w-full bg-zinc-200",
		Form:           "flex flex-col gap-2 my-2",
		Label:          "text-sm mb-1 text-black block",
		Input:          "py-1 px-2 cursor-text border border-solid border-black text-sm w-full text-black box-border focus:outline-none",
		Button:         "flex justify-center items-center rounded-md text-sm p-1 cursor-pointer border border-zinc-950 w-full mt-2 disabled:opacity-70 disabled:cursor-[unset] bg-amber-200 text-amber-950 hover:bg-amber-300",
		Links:          "flex flex-col gap-3 my-2",
		Anchor:         "block text-xs text-center underline hover:text-blue-700",
		Message:        "block text-center text-xs mb-1 rounded-md py-6 px-4 border border-black",
		Error:          "block text-center text-xs mb-1 rounded-md py-6 px-4 border text-red-900 bg-red-100 border-red-950",
	}
}

// Merge returns the default classes with every non-empty override merged in.
func (a Appearance) Merge(override Appearance) Appearance {
	return Appearance{
		Container:      merge(a.Container, override.Container),
		ProviderList:   merge(a.ProviderList, override.ProviderList),
		ProviderButton: merge(a.ProviderButton, override.ProviderButton),
		Divider:        merge(a.Divider, override.Divider),
		Form:           merge(a.Form, override.Form),
		Label:          merge(a.Label, override.Label),
		Input:          merge(a.Input, override.Input),
		Button:         merge(a.Button, override.Button),
		Links:          merge(a.Links, override.Links),
		Anchor:         merge(a.Anchor, override.Anchor),
		Message:        merge(a.Message, override.Message),
		Error:          merge(a.Error, override.Error),
	}
}

func merge(base, override string) string {
	if override == "" {
		return base
	}
	return twmerge.Merge(base, override)
}
