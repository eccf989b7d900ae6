package fingerprint

// CommonOUIs is the embedded vendor table keyed by the first three octets.
// It covers the vendors seen in steering captures in practice; lookups on
// unknown prefixes fall back to "Unknown".
var CommonOUIs = map[string]string{
	// Mobile
	"F0:18:98": "Apple",
	"3C:22:FB": "Apple",
	"A4:83:E7": "Apple",
	"AC:BC:32": "Apple",
	"28:6A:BA": "Apple",
	"8C:77:12": "Samsung",
	"5C:0A:5B": "Samsung",
	"F4:7B:5E": "Samsung",
	"48:46:FB": "Huawei",
	"D0:7A:B5": "Huawei",
	"00:9A:CD": "Huawei",
	"64:09:80": "Xiaomi",
	"F8:A4:5F": "Xiaomi",
	"28:6C:07": "Xiaomi",
	"F4:F5:D8": "Google",
	"54:60:09": "Google",
	"E0:75:7D": "Motorola",
	"A8:92:2C": "LG",
	"10:68:3F": "LG",
	"64:A2:F9": "OnePlus",
	"1C:77:F6": "Oppo",
	"D0:9C:7A": "Vivo",
	"30:17:C8": "Sony",

	// Computers
	"A0:88:B4": "Intel",
	"8C:70:5A": "Intel",
	"00:14:22": "Dell",
	"3C:D9:2B": "HP",
	"88:70:8C": "Lenovo",
	"2C:56:DC": "ASUS",
	"28:18:78": "Microsoft",
	"B8:27:EB": "Raspberry Pi",
	"DC:A6:32": "Raspberry Pi",
	"24:0A:C4": "Espressif",

	// Network equipment
	"00:40:96": "Cisco",
	"58:AC:78": "Cisco",
	"50:C7:BF": "TP-Link",
	"F4:F2:6D": "TP-Link",
	"A0:40:A0": "Netgear",
	"9C:3D:CF": "Netgear",
	"24:A4:3C": "Ubiquiti",
	"FC:EC:DA": "Ubiquiti",
	"24:DE:C6": "Aruba",
	"58:93:96": "Ruckus",
	"4C:5E:0C": "MikroTik",
	"3C:A6:2F": "AVM",
	"00:23:F8": "Zyxel",
	"00:10:18": "Broadcom",
	"00:A0:C6": "Qualcomm",

	// Virtualization
	"00:50:56": "VMware",
	"08:00:27": "VirtualBox",
	"52:54:00": "QEMU",
	"00:1C:42": "Parallels",
}

// LookupVendor resolves a vendor name from an OUI prefix ("XX:XX:XX").
func LookupVendor(oui string) (string, bool) {
	vendor, ok := CommonOUIs[oui]
	return vendor, ok
}
