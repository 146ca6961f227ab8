// Package transform derives delivery URLs from stored asset references.
//
// A reference is never rewritten in storage; every display variant is computed
// here by inserting a transformation segment after the host's upload marker.
// All functions are pure.
package transform

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// UploadMarker separates the host prefix from the asset path.
	UploadMarker = "/upload/"
	// DefaultHostMarker identifies references served by the asset host.
	DefaultHostMarker = "cloudinary"
)

// Breakpoint is one srcset entry.
type Breakpoint struct {
	Descriptor string
	Width      int
	Height     int
}

// DefaultBreakpoints are used by SrcSet.
var DefaultBreakpoints = []Breakpoint{
	{"320w", 320, 160},
	{"640w", 640, 320},
	{"768w", 768, 384},
	{"1024w", 1024, 512},
	{"1280w", 1280, 640},
}

var (
	versionPrefix = regexp.MustCompile(`^v\d+/`)
	fileExtension = regexp.MustCompile(`\.[^/.]+$`)
)

// Engine holds the host marker used to recognize hosted references.
type Engine struct {
	hostMarker  string
	passthrough bool
}

// New returns an engine recognizing references that contain hostMarker.
func New(hostMarker string) Engine {
	if hostMarker == "" {
		hostMarker = DefaultHostMarker
	}
	return Engine{hostMarker: hostMarker}
}

// Passthrough returns an engine that treats no reference as hosted. Use it
// for hosts without URL-based transformations, such as plain S3 or a CDN in
// front of it.
func Passthrough() Engine {
	return Engine{passthrough: true}
}

var defaultEngine = New(DefaultHostMarker)

// Transform derives the delivery URL of ref for profile using the default engine.
func Transform(ref string, profile Profile) string {
	return defaultEngine.Transform(ref, profile)
}

// IsHosted reports whether ref belongs to the asset host.
func (e Engine) IsHosted(ref string) bool {
	return !e.passthrough && ref != "" && strings.Contains(ref, e.hostMarker)
}

// Transform derives the delivery URL of ref for profile. References that are
// not hosted, or whose upload marker is missing or ambiguous, are returned
// unchanged.
func (e Engine) Transform(ref string, profile Profile) string {
	return e.URL(ref, profile.Params())
}

// URL inserts the segment for p into ref.
func (e Engine) URL(ref string, p Params) string {
	if !e.IsHosted(ref) {
		return ref
	}
	parts := strings.Split(ref, UploadMarker)
	if len(parts) != 2 {
		return ref
	}
	return parts[0] + UploadMarker + p.Segment() + "/" + parts[1]
}

// SrcSet builds a responsive srcset attribute value from DefaultBreakpoints.
// Non-hosted references get the unmodified reference for each descriptor.
func (e Engine) SrcSet(ref string) string {
	base := Thumbnail.Params()
	entries := make([]string, 0, len(DefaultBreakpoints))
	for _, bp := range DefaultBreakpoints {
		p := Params{Width: bp.Width, Height: bp.Height, Crop: base.Crop, Quality: "auto:good", Format: base.Format, DPR: base.DPR}
		entries = append(entries, fmt.Sprintf("%s %s", e.URL(ref, p), bp.Descriptor))
	}
	return strings.Join(entries, ", ")
}

// Placeholder returns a tiny low-quality variant for lazy loading, or "" when
// ref is not hosted.
func (e Engine) Placeholder(ref string) string {
	if !e.IsHosted(ref) {
		return ""
	}
	return e.URL(ref, Params{Width: 50, Height: 25, Crop: "fill", Quality: "auto:low", Format: "webp", DPR: "auto"})
}

// Safe returns a moderately sized variant for hosted references and ref itself
// otherwise.
func (e Engine) Safe(ref string) string {
	return e.URL(ref, Params{Width: 400, Height: 200, Crop: "fill", Quality: "auto:good", Format: "auto", DPR: "auto"})
}

// PublicID extracts the host-side identifier (path without version and
// extension) from a hosted reference.
func (e Engine) PublicID(ref string) (string, bool) {
	if !e.IsHosted(ref) {
		return "", false
	}
	parts := strings.Split(ref, UploadMarker)
	if len(parts) != 2 {
		return "", false
	}
	id := versionPrefix.ReplaceAllString(parts[1], "")
	id = fileExtension.ReplaceAllString(id, "")
	return id, id != ""
}
