package vision

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/laptopkerja/contentgen/types"
)

// Limits bound the accepted image references.
type Limits struct {
	MaxImages     int
	MaxImageBytes int64
}

// DefaultLimits are used for zero-valued limits.
var DefaultLimits = Limits{MaxImages: 4, MaxImageBytes: 5 << 20}

var allowedMIME = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

const imageField = "imageReferences"

// NormalizeImageReferences validates refs and returns a cleaned copy:
// values are trimmed, data: URLs given as kind url become kind data_url,
// exact duplicates are dropped. Any violation is a VALIDATION_ERROR on
// field imageReferences.
func NormalizeImageReferences(refs []types.ImageReference, limits Limits) ([]types.ImageReference, error) {
	if limits.MaxImages <= 0 {
		limits.MaxImages = DefaultLimits.MaxImages
	}
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = DefaultLimits.MaxImageBytes
	}

	out := make([]types.ImageReference, 0, len(refs))
	seen := make(map[types.ImageReference]bool, len(refs))
	for i, ref := range refs {
		norm, err := normalizeOne(ref, limits)
		if err != nil {
			return nil, types.NewValidationError(imageField,
				fmt.Sprintf("image reference %d: %s", i, err.Error()))
		}
		if seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	if len(out) > limits.MaxImages {
		return nil, types.NewValidationError(imageField,
			fmt.Sprintf("at most %d image references are allowed, got %d", limits.MaxImages, len(out)))
	}
	return out, nil
}

func normalizeOne(ref types.ImageReference, limits Limits) (types.ImageReference, error) {
	kind := types.ImageKind(strings.ToLower(strings.TrimSpace(string(ref.Kind))))
	switch kind {
	case types.ImageKindURL, "":
		raw := strings.TrimSpace(ref.URL)
		if strings.HasPrefix(strings.ToLower(raw), "data:") {
			data, mime, err := splitDataURL(raw)
			if err != nil {
				return types.ImageReference{}, err
			}
			return checkData(data, mime, limits)
		}
		return checkURL(raw)
	case types.ImageKindDataURL:
		data := strings.TrimSpace(ref.Data)
		mime := strings.TrimSpace(ref.MimeType)
		if strings.HasPrefix(strings.ToLower(data), "data:") {
			var err error
			if data, mime, err = splitDataURL(data); err != nil {
				return types.ImageReference{}, err
			}
		}
		return checkData(data, mime, limits)
	default:
		return types.ImageReference{}, fmt.Errorf("unknown kind %q", ref.Kind)
	}
}

func checkURL(raw string) (types.ImageReference, error) {
	if raw == "" {
		return types.ImageReference{}, fmt.Errorf("url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return types.ImageReference{}, fmt.Errorf("url must be an absolute http(s) URL")
	}
	return types.URLImage(raw), nil
}

func checkData(data, mime string, limits Limits) (types.ImageReference, error) {
	mime = strings.ToLower(mime)
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	if !allowedMIME[mime] {
		return types.ImageReference{}, fmt.Errorf("unsupported mime type %q", mime)
	}
	if data == "" {
		return types.ImageReference{}, fmt.Errorf("image data is empty")
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return types.ImageReference{}, fmt.Errorf("image data is not valid base64")
	}
	if int64(len(decoded)) > limits.MaxImageBytes {
		return types.ImageReference{}, fmt.Errorf("image is %d bytes, limit is %d", len(decoded), limits.MaxImageBytes)
	}
	return types.DataImage(data, mime), nil
}

// splitDataURL parses "data:<mime>;base64,<payload>".
func splitDataURL(raw string) (data, mime string, err error) {
	header, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return "", "", fmt.Errorf("malformed data URL")
	}
	mime, enc, _ := strings.Cut(header, ";")
	if !strings.EqualFold(enc, "base64") {
		return "", "", fmt.Errorf("data URL must be base64 encoded")
	}
	return strings.TrimSpace(payload), mime, nil
}
