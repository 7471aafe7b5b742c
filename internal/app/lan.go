package app

import "net"

// interfaceSource lists local interface addresses; faked in tests
type interfaceSource interface {
	Addrs() ([]net.Addr, error)
}

type systemInterfaces struct{}

// Addrs returns addresses of interfaces that are up and not loopback
func (systemInterfaces) Addrs() ([]net.Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []net.Addr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		out = append(out, addrs...)
	}
	return out, nil
}

// lanAddress picks the IPv4 address judges' tablets on the arena network should use.
// Private addresses win; localhost when nothing usable is found.
func lanAddress(src interfaceSource) string {
	addrs, err := src.Addrs()
	if err != nil {
		return "localhost"
	}

	var fallback string
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip == nil || ip.To4() == nil || ip.IsLoopback() {
			continue
		}
		if ip.IsPrivate() {
			return ip.String()
		}
		if fallback == "" {
			fallback = ip.String()
		}
	}
	if fallback != "" {
		return fallback
	}
	return "localhost"
}
