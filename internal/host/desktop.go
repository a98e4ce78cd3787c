package host

import (
	"context"
	"net/url"
	"strings"

	"github.com/dvinay/custom-search-shortcuts/internal/menusync"
)

// ManagementScheme prefixes the program's own management surface
const ManagementScheme = "shortcuts://"

// ManagementURL builds the address of the management surface for params
func ManagementURL(params url.Values) string {
	u := ManagementScheme + "manage"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Opener opens a URL outside the program
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Desktop implements menusync.TabHost on top of the system browser
type Desktop struct {
	Browser Opener

	// Page is the active page reported to add-current-page
	Page menusync.Tab

	// InternalPrefixes mark pages that belong to the browser itself
	InternalPrefixes []string

	// Manage opens the management surface
	Manage func(ctx context.Context, params url.Values) error
}

// QueryActiveTab returns the configured page
func (d *Desktop) QueryActiveTab(ctx context.Context) (menusync.Tab, error) {
	return d.Page, ctx.Err()
}

// OpenNewTab opens url in the browser
func (d *Desktop) OpenNewTab(ctx context.Context, url string) error {
	return d.Browser.Open(ctx, url)
}

// OpenManagementSurface hands params to the Manage callback
func (d *Desktop) OpenManagementSurface(ctx context.Context, params url.Values) error {
	if d.Manage == nil {
		return nil
	}
	return d.Manage(ctx, params)
}

// IsOwnSurface reports whether pageURL is a browser-internal page or the
// management surface itself
func (d *Desktop) IsOwnSurface(pageURL string) bool {
	if strings.HasPrefix(pageURL, ManagementScheme) {
		return true
	}
	for _, prefix := range d.InternalPrefixes {
		if prefix != "" && strings.HasPrefix(pageURL, prefix) {
			return true
		}
	}
	return false
}
