package catalog

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// decodeJSON accepts either {"products": [...]} or a bare array of entries.
func decodeJSON(data []byte) ([]Entry, error) {
	d := jx.DecodeBytes(data)

	var entries []Entry
	switch d.Next() {
	case jx.Array:
		if err := decodeEntries(d, &entries); err != nil {
			return nil, err
		}
	case jx.Object:
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			if key != "products" {
				return d.Skip()
			}
			return decodeEntries(d, &entries)
		}); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unexpected %s at catalog root", d.Next())
	}
	return entries, nil
}

func decodeEntries(d *jx.Decoder, out *[]Entry) error {
	return d.Arr(func(d *jx.Decoder) error {
		var e Entry
		if err := decodeEntry(d, &e); err != nil {
			return err
		}
		*out = append(*out, e)
		return nil
	})
}

func decodeEntry(d *jx.Decoder, e *Entry) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			e.ID, err = decodeScalar(d)
		case "name":
			e.Name, err = d.Str()
		case "price":
			e.Price, err = decodeScalar(d)
		case "category":
			e.Category, err = d.Str()
		case "image":
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "thumbnail":
					e.Image.Thumbnail, err = d.Str()
				case "mobile":
					e.Image.Mobile, err = d.Str()
				case "tablet":
					e.Image.Tablet, err = d.Str()
				case "desktop":
					e.Image.Desktop, err = d.Str()
				default:
					err = d.Skip()
				}
				return err
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
}

// decodeScalar reads a string or a number as text. Numbers keep their exact
// textual form so prices are not routed through float64.
func decodeScalar(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	default:
		return "", errors.Errorf("expected string or number, got %s", d.Next())
	}
}
