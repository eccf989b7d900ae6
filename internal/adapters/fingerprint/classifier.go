package fingerprint

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// mobileVendorHints are filename substrings that identify the client brand
// when the OUI is randomized or unknown.
var mobileVendorHints = []string{
	"apple", "iphone", "ipad", "samsung", "galaxy", "huawei", "xiaomi",
	"redmi", "motorola", "moto", "lg", "oppo", "vivo", "oneplus", "pixel",
	"google", "sony", "nokia", "honor", "realme",
}

var (
	mobileVendors   = []string{"apple", "samsung", "huawei", "xiaomi", "google", "motorola", "lg", "oppo", "vivo", "oneplus", "sony", "nokia", "honor", "realme"}
	computerVendors = []string{"intel", "dell", "hp", "lenovo", "asus", "microsoft", "raspberry", "espressif"}
	networkVendors  = []string{"cisco", "tp-link", "netgear", "ubiquiti", "aruba", "ruckus", "mikrotik", "avm", "zyxel", "broadcom", "qualcomm"}
	virtualVendors  = []string{"vmware", "virtualbox", "qemu", "parallels", "virtual"}
)

// uuidPrefix matches a 36-char UUID followed by an underscore at the start of
// an uploaded filename.
var uuidPrefix = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}_`)

// numericPrefix matches a leading numeric run like "01_" or "2023-".
var numericPrefix = regexp.MustCompile(`^[0-9]+[-_ ]`)

// Classifier resolves device identity from MAC OUI, filename and user hints.
type Classifier struct {
	ouis map[string]string
}

// NewClassifier builds a classifier over the embedded OUI table.
func NewClassifier() *Classifier {
	return &Classifier{ouis: CommonOUIs}
}

// Classify implements ports.DeviceClassifier.
func (c *Classifier) Classify(mac string, hints domain.UserHints, filename string) domain.DeviceInfo {
	info := domain.DeviceInfo{
		MAC:        strings.ToLower(mac),
		Vendor:     "Unknown",
		Category:   domain.CategoryUnknownDev,
		Confidence: 0.3,
	}

	parsed, err := ParseMAC(mac)
	if err == nil {
		info.OUI = parsed.OUI()
		if parsed.IsRandomized() {
			info.IsVirtual = true
			info.Vendor = "Virtual"
			info.Confidence = 0.5
		} else if vendor, ok := c.ouis[parsed.OUI()]; ok {
			info.Vendor = vendor
			info.Confidence = 0.7
		}
	}

	if model, vendor := inferFromFilename(filename); vendor != "" {
		info.Vendor = vendor
		if info.Confidence < 0.8 {
			info.Confidence = 0.8
		}
	} else if model != "" && info.Model == nil {
		info.Model = &model
	}

	if hints.DeviceBrand != "" {
		info.Vendor = hints.DeviceBrand
		info.Confidence = 1.0
	}
	if hints.DeviceModel != "" {
		model := hints.DeviceModel
		info.Model = &model
		info.Confidence = 1.0
	}

	info.Category = categorize(info.Vendor, info.IsVirtual)
	return info
}

// inferFromFilename cleans an uploaded capture filename and extracts either a
// known mobile vendor or a free-form model hint.
func inferFromFilename(filename string) (model, vendor string) {
	if filename == "" {
		return "", ""
	}

	name := filepath.Base(filename)
	name = uuidPrefix.ReplaceAllString(name, "")
	name = numericPrefix.ReplaceAllString(name, "")
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	lower := strings.ToLower(name)
	for _, hint := range mobileVendorHints {
		if strings.Contains(lower, hint) {
			return name, canonicalVendor(hint)
		}
	}
	return name, ""
}

// canonicalVendor maps a filename hint to the vendor name used by the OUI
// table (e.g. "iphone" → "Apple").
func canonicalVendor(hint string) string {
	switch hint {
	case "iphone", "ipad":
		return "Apple"
	case "galaxy":
		return "Samsung"
	case "redmi":
		return "Xiaomi"
	case "moto":
		return "Motorola"
	case "pixel":
		return "Google"
	case "lg":
		return "LG"
	default:
		return strings.ToUpper(hint[:1]) + hint[1:]
	}
}

func categorize(vendor string, isVirtual bool) domain.DeviceCategory {
	if isVirtual {
		return domain.CategoryVirtual
	}
	lower := strings.ToLower(vendor)
	for _, v := range virtualVendors {
		if strings.Contains(lower, v) {
			return domain.CategoryVirtual
		}
	}
	for _, v := range mobileVendors {
		if strings.Contains(lower, v) {
			return domain.CategoryMobile
		}
	}
	for _, v := range computerVendors {
		if strings.Contains(lower, v) {
			return domain.CategoryComputer
		}
	}
	for _, v := range networkVendors {
		if strings.Contains(lower, v) {
			return domain.CategoryNetworkEquip
		}
	}
	return domain.CategoryUnknownDev
}
