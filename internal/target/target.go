// Package target expands textual target expressions into concrete scan
// targets. A target expression is a CIDR block, a single IP literal, or a
// hostname; hostnames are passed through unresolved and only touch DNS when
// the prober dials them.
package target

import (
	"net"
	"strings"
)

const (
	ipv4Bits = 32
	ipv6Bits = 128
)

// Expand turns a target expression into an ordered list of hosts to scan.
// Precedence: CIDR notation (expanded to every usable address, ascending),
// then IP literal, then hostname fallback. There is no error path: anything
// that is not a valid CIDR or IP is handed back verbatim as a hostname, and
// an invalid CIDR string also falls through to the hostname fallback.
func Expand(arg string) []string {
	arg = strings.TrimSpace(arg)

	if strings.Contains(arg, "/") {
		if hosts, ok := expandCIDR(arg); ok {
			return hosts
		}
	}
	return []string{arg}
}

// expandCIDR enumerates the usable host addresses of a CIDR block in
// ascending order. IPv4 blocks wider than /31 exclude the network and
// broadcast addresses; /31 and /32 yield every address. IPv6 blocks wider
// than /127 exclude only the subnet-router anycast address.
func expandCIDR(arg string) ([]string, bool) {
	_, ipnet, err := net.ParseCIDR(arg)
	if err != nil {
		return nil, false
	}

	var hosts []string
	for ip := cloneIP(ipnet.IP); ipnet.Contains(ip); {
		hosts = append(hosts, ip.String())
		if !incIP(ip) {
			// Wrapped past the top of the address space; for a /0 the
			// wrapped address is inside the block again.
			break
		}
	}

	ones, bits := ipnet.Mask.Size()
	switch bits {
	case ipv4Bits:
		if ones < ipv4Bits-1 && len(hosts) > 2 {
			hosts = hosts[1 : len(hosts)-1]
		}
	case ipv6Bits:
		if ones < ipv6Bits-1 && len(hosts) > 1 {
			hosts = hosts[1:]
		}
	}

	return hosts, true
}

// cloneIP copies an IP so the iteration below never mutates the parsed net.
func cloneIP(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)
	return out
}

// incIP increments an address in place, big-endian with carry. It reports
// false when the carry runs off the top and the address wraps to all zeros.
func incIP(ip net.IP) bool {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			return true
		}
	}
	return false
}
