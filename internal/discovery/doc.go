// Package discovery advertises and finds e-paper displays running the
// setup webserver over mDNS.
//
// A display in configuring mode registers itself as a "_http._tcp" service
// in the "local." domain. Its TXT records mark it as setup-capable and carry
// its ID and configuration status:
//
//	epdsetup=1
//	id=EPD-1A2B3C4D
//	status=default_values
//	path=/setup/home
//
// # Advertising
//
//	adv, err := discovery.Advertise("", id, 80, store.Status())
//	if err != nil {
//	    return err
//	}
//	defer adv.Shutdown()
//
// # Scanning
//
//	devices, err := discovery.NewScanner().ScanForDevices(ctx)
//	for _, d := range devices {
//	    fmt.Println(d.ID, d.BaseURL(), d.Status)
//	}
//
// Services without the epdsetup=1 marker are ignored, so other HTTP
// services on the network never show up as displays.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Displays must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
