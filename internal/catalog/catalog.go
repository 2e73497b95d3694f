// Package catalog loads the product catalog shown in the storefront.
//
// A catalog file lists products with their displayed price text. Prices are
// parsed when the file is loaded, so a single malformed price rejects the
// whole file instead of showing up later as a zero-priced product.
package catalog

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"gopkg.in/yaml.v3"

	"github.com/xenking/storefront/internal/domain/product"
)

//go:embed default.yaml
var defaultCatalog []byte

// Format is the encoding of a catalog file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Entry is one product as written in a catalog file.
type Entry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Category string `yaml:"category"`
	Image    struct {
		Thumbnail string `yaml:"thumbnail"`
		Mobile    string `yaml:"mobile"`
		Tablet    string `yaml:"tablet"`
		Desktop   string `yaml:"desktop"`
	} `yaml:"image"`
}

type file struct {
	Products []Entry `yaml:"products"`
}

// Default returns the embedded demo catalog.
func Default() ([]product.Product, error) {
	return Parse(bytes.NewReader(defaultCatalog), FormatYAML)
}

// FormatOf infers the format from a file name, ignoring a trailing .gz.
func FormatOf(path string) (Format, bool, error) {
	gz := strings.EqualFold(filepath.Ext(path), ".gz")
	if gz {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, gz, nil
	case ".json":
		return FormatJSON, gz, nil
	default:
		return "", gz, errors.Errorf("unsupported catalog format %q", path)
	}
}

// Load reads and parses the catalog at path.
func Load(path string) ([]product.Product, error) {
	format, gz, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if gz {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	products, err := Parse(r, format)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filepath.Base(path))
	}
	return products, nil
}

// Parse decodes a catalog in the given format.
func Parse(r io.Reader, format Format) ([]product.Product, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}

	var entries []Entry
	switch format {
	case FormatYAML:
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
		entries = f.Products
	case FormatJSON:
		entries, err = decodeJSON(data)
		if err != nil {
			return nil, errors.Wrap(err, "decode json")
		}
	default:
		return nil, errors.Errorf("unsupported catalog format %q", format)
	}

	return toProducts(entries)
}

func toProducts(entries []Entry) ([]product.Product, error) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]product.Product, 0, len(entries))
	for i, e := range entries {
		p, err := product.FromInput(product.Input{ID: e.ID, Name: e.Name, PriceText: e.Price})
		if err != nil {
			return nil, errors.Wrapf(err, "product #%d", i+1)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errors.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = struct{}{}

		p.Category = e.Category
		p.Image = product.Image{
			Thumbnail: e.Image.Thumbnail,
			Mobile:    e.Image.Mobile,
			Tablet:    e.Image.Tablet,
			Desktop:   e.Image.Desktop,
		}
		out = append(out, p)
	}
	return out, nil
}
