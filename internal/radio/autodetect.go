package radio

import (
	"fmt"
	"regexp"

	"github.com/jochenvg/go-udev"
)

// usbSerialDevnode matches the /dev/ttyUSBn and /dev/ttyACMn nodes a
// USB-attached radio adapter shows up as, mirroring the inventory-by-regex
// approach used to pair a sound card with its HID sibling: rather than
// asking the caller to know the device path in advance, walk what the
// kernel already enumerated and pick the one that matches.
var usbSerialDevnode = regexp.MustCompile(`^/dev/(ttyUSB|ttyACM)[0-9]+$`)

// AutoDetect scans udev for USB-serial devices and returns the devnode of
// the single match, or an error if none or more than one is found — the
// caller should fall back to an explicit -port flag when this is
// ambiguous.
func AutoDetect() (string, error) {
	u := udev.Udev{}
	enumerate := u.NewEnumerate()
	enumerate.AddMatchSubsystem("tty")

	devices, err := enumerate.Devices()
	if err != nil {
		return "", fmt.Errorf("radio: enumerating tty devices: %w", err)
	}

	var found []string
	for _, d := range devices {
		node := d.Devnode()
		if usbSerialDevnode.MatchString(node) {
			found = append(found, node)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("radio: no USB-serial device found")
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("radio: multiple USB-serial devices found: %v", found)
	}
}
