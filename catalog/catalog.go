// Package catalog describes the generated art assets and the helpers the
// spawn planner and the renderers use to pick from them.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

var ErrInvalidCatalog = errors.New("invalid asset catalog")

// Group tells core assets apart from the extended set.
type Group string

const (
	GroupCore     Group = "core"
	GroupExtended Group = "extended"
)

// ImageAsset is one generated image.
type ImageAsset struct {
	ID          string   `json:"id" bson:"id"`
	FileName    string   `json:"fileName" bson:"file_name"`
	Prompt      string   `json:"prompt" bson:"prompt"`
	AspectRatio string   `json:"aspectRatio" bson:"aspect_ratio"`
	Group       Group    `json:"group" bson:"group"`
	Tags        []string `json:"tags" bson:"tags"`
}

// VideoAsset is one generated clip.
type VideoAsset struct {
	ID              string  `json:"id" bson:"id"`
	FileName        string  `json:"fileName" bson:"file_name"`
	Prompt          string  `json:"prompt" bson:"prompt"`
	AspectRatio     string  `json:"aspectRatio" bson:"aspect_ratio"`
	DurationSeconds float64 `json:"durationSeconds" bson:"duration_seconds"`
	Group           Group   `json:"group" bson:"group"`
}

// Images groups the image assets by role.
type Images struct {
	CoreFloorTextures []ImageAsset `json:"coreFloorTextures" bson:"core_floor_textures"`
	CoreWallTextures  []ImageAsset `json:"coreWallTextures" bson:"core_wall_textures"`
	CoreCollectibles  []ImageAsset `json:"coreCollectibles" bson:"core_collectibles"`
	WallTextures      []ImageAsset `json:"wallTextures" bson:"wall_textures"`
	FloorTextures     []ImageAsset `json:"floorTextures" bson:"floor_textures"`
	Obstacles         []ImageAsset `json:"obstacles" bson:"obstacles"`
	SolutionItems     []ImageAsset `json:"solutionItems" bson:"solution_items"`
	Characters        []ImageAsset `json:"characters" bson:"characters"`
	Backdrops         []ImageAsset `json:"backdrops" bson:"backdrops"`
	All               []ImageAsset `json:"all" bson:"all"`
}

// Catalog is the asset manifest written by the asset generator.
type Catalog struct {
	GeneratedAt string       `json:"generatedAt" bson:"generated_at"`
	Images      Images       `json:"images" bson:"images"`
	Videos      []VideoAsset `json:"videos" bson:"videos"`
}

//go:embed default_catalog.json
var defaultCatalog []byte

// Default returns the catalog bundled with the binary.
func Default() *Catalog {
	c, err := Decode(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(err)
	}
	return c
}

// Decode reads a catalog from r.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return &c, nil
}

// LoadFile reads a catalog from the JSON file at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// ObstacleAssets returns the images usable as blockades.
func (c *Catalog) ObstacleAssets() []ImageAsset {
	if c == nil {
		return nil
	}
	return c.Images.Obstacles
}

// SolutionAssets returns the images usable as unlocking items: the core
// collectibles followed by the solution items.
func (c *Catalog) SolutionAssets() []ImageAsset {
	if c == nil {
		return nil
	}
	out := make([]ImageAsset, 0, len(c.Images.CoreCollectibles)+len(c.Images.SolutionItems))
	out = append(out, c.Images.CoreCollectibles...)
	return append(out, c.Images.SolutionItems...)
}

// ImageBase is where the generated images are served from.
const ImageBase = "/assets/generated_images/"

// TextureURL joins an image base path and the asset file name.
func TextureURL(base string, a ImageAsset) string {
	if a.FileName == "" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + a.FileName
}

// FallbackLabel names an item whose asset has no usable id.
const FallbackLabel = "Circus Relic"

var labelPrefix = regexp.MustCompile(`^(item_|paper_mache_|popup_|slide_|drop_)`)

// FormatAssetLabel turns an asset id such as "paper_mache_rubber_chicken_cutout"
// into a display name ("Rubber Chicken").
func FormatAssetLabel(id string) string {
	if id == "" {
		return FallbackLabel
	}
	cleaned := labelPrefix.ReplaceAllString(id, "")
	cleaned = strings.TrimSuffix(cleaned, "_cutout")
	cleaned = strings.TrimSuffix(cleaned, "_item")
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "_", " "))
	if cleaned == "" {
		cleaned = id
	}
	return titleCase(cleaned)
}

func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
