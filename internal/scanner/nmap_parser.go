package scanner

import (
	"io"
	"sort"
	"strconv"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/antchfx/xmlquery"
)

// ParseNmapXML reads nmap -oX output. One result is returned per <host>
// element. A host without an IPv4 address has status unknown; otherwise the
// host is up when any port is open or filtered and down when none are.
func ParseNmapXML(r io.Reader, host string) ([]ScanResult, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, common.WrapError(err, "failed to parse nmap XML")
	}

	hostNodes, err := xmlquery.QueryAll(doc, "//host")
	if err != nil {
		return nil, common.WrapError(err, "invalid host query")
	}

	results := make([]ScanResult, 0, len(hostNodes))
	for _, node := range hostNodes {
		results = append(results, parseHostNode(node, host))
	}
	return results, nil
}

func parseHostNode(node *xmlquery.Node, host string) ScanResult {
	result := ScanResult{
		Host:          host,
		Status:        HostStatusUnknown,
		OpenTCPPorts:  []int{},
		FilteredPorts: []int{},
	}

	addr := xmlquery.FindOne(node, "address[@addrtype='ipv4']")
	if addr == nil || addr.SelectAttr("addr") == "" {
		return result
	}
	result.Address = addr.SelectAttr("addr")

	for _, port := range xmlquery.Find(node, ".//port") {
		portID, err := strconv.Atoi(port.SelectAttr("portid"))
		if err != nil {
			continue
		}
		state := xmlquery.FindOne(port, "state")
		if state == nil {
			continue
		}
		switch state.SelectAttr("state") {
		case "open":
			result.OpenTCPPorts = append(result.OpenTCPPorts, portID)
		case "filtered":
			result.FilteredPorts = append(result.FilteredPorts, portID)
		}
	}
	sort.Ints(result.OpenTCPPorts)
	sort.Ints(result.FilteredPorts)

	if len(result.OpenTCPPorts) > 0 || len(result.FilteredPorts) > 0 {
		result.Status = HostStatusUp
	} else {
		result.Status = HostStatusDown
	}
	return result
}
