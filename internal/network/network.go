// Package network resolves the addresses a phone can use to reach the host.
package network

import (
	"fmt"
	"net"
	"strconv"
)

// GetLocalIP returns the primary local IP address
func GetLocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// GetLocalIPs returns all available local IPv4 addresses
func GetLocalIPs() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var ips []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ip := ipv4Of(addr); ip != "" {
				ips = append(ips, ip)
			}
		}
	}
	return ips, nil
}

func ipv4Of(addr net.Addr) string {
	var ip net.IP
	switch v := addr.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	}
	if ip == nil || ip.IsLoopback() {
		return ""
	}
	if ip = ip.To4(); ip == nil {
		return ""
	}
	return ip.String()
}

// ConnectURL builds the https URL the phone opens. When no route to the
// outside exists it falls back to the first interface address, then to
// localhost.
func ConnectURL(port int) string {
	ip, err := GetLocalIP()
	if err != nil {
		if ips, ierr := GetLocalIPs(); ierr == nil && len(ips) > 0 {
			ip = ips[0]
		} else {
			ip = "127.0.0.1"
		}
	}
	return FormatURL(ip, port)
}

// FormatURL joins a host and port into the client URL.
func FormatURL(host string, port int) string {
	return fmt.Sprintf("https://%s/", net.JoinHostPort(host, strconv.Itoa(port)))
}
