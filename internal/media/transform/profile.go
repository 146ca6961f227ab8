package transform

import (
	"fmt"
	"strings"
)

// Profile names a fixed bundle of delivery parameters.
type Profile int

const (
	Thumbnail Profile = iota
	Preview
	Original
	GalleryThumb
	Mobile
	HighQuality
)

// Profiles lists every defined profile in declaration order.
var Profiles = []Profile{Thumbnail, Preview, Original, GalleryThumb, Mobile, HighQuality}

// Params is the parameter set encoded into a transformation segment.
type Params struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
	DPR     string
}

// Segment renders the params in the asset host's URL grammar.
func (p Params) Segment() string {
	return fmt.Sprintf("w_%d,h_%d,c_%s,q_%s,f_%s,dpr_%s",
		p.Width, p.Height, p.Crop, p.Quality, p.Format, p.DPR)
}

// Params returns the bundle for p. Values outside the enum resolve to the
// thumbnail bundle.
func (p Profile) Params() Params {
	switch p {
	case Preview:
		return Params{Width: 600, Height: 240, Crop: "fill", Quality: "auto:good", Format: "auto", DPR: "auto"}
	case Original:
		return Params{Width: 1200, Height: 1200, Crop: "limit", Quality: "auto:best", Format: "auto", DPR: "auto"}
	case GalleryThumb:
		return Params{Width: 150, Height: 100, Crop: "fill", Quality: "auto:good", Format: "auto", DPR: "auto"}
	case Mobile:
		return Params{Width: 300, Height: 150, Crop: "fill", Quality: "auto:eco", Format: "auto", DPR: "auto"}
	case HighQuality:
		return Params{Width: 800, Height: 400, Crop: "fill", Quality: "auto:best", Format: "auto", DPR: "auto"}
	default:
		return Params{Width: 400, Height: 192, Crop: "fill", Quality: "80", Format: "auto", DPR: "auto"}
	}
}

func (p Profile) String() string {
	switch p {
	case Thumbnail:
		return "thumbnail"
	case Preview:
		return "preview"
	case Original:
		return "original"
	case GalleryThumb:
		return "gallery_thumb"
	case Mobile:
		return "mobile"
	case HighQuality:
		return "high_quality"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

// ParseProfile maps a profile name to its Profile. Unknown names return
// Thumbnail and false so callers can decide whether to reject them.
func ParseProfile(name string) (Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "thumbnail":
		return Thumbnail, true
	case "preview":
		return Preview, true
	case "original":
		return Original, true
	case "gallery_thumb", "gallerythumb":
		return GalleryThumb, true
	case "mobile":
		return Mobile, true
	case "high_quality", "highquality":
		return HighQuality, true
	default:
		return Thumbnail, false
	}
}
