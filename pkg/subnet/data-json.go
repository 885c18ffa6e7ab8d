package subnet

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// DataJSON returns the subnet in its fixed, byte-reproducible JSON layout:
//
//	{ "networkId": "0", "admin": "A", "networkManager": "M", "active": true, "peers": [{"pubKeyHash": "abc123", "macHash": "", "ip": "10.27.16.10/24", "neighbors": ["456xyz"]}] }
//
// Peers appear in insertion order and neighbors in relation order.
func (s *Subnet) DataJSON() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var buf bytes.Buffer
	buf.WriteString(`{ "networkId": `)
	writeString(&buf, strconv.Itoa(s.id))
	buf.WriteString(`, "admin": `)
	writeString(&buf, s.admin)
	buf.WriteString(`, "networkManager": `)
	writeString(&buf, s.networkManager)
	buf.WriteString(`, "active": `)
	buf.WriteString(strconv.FormatBool(s.st.active))
	buf.WriteString(`, "peers": [`)
	for i, p := range s.st.peers {
		if i > 0 {
			buf.WriteString(", ")
		}
		writePeer(&buf, p)
	}
	buf.WriteString(`] }`)
	return buf.String()
}

func writePeer(buf *bytes.Buffer, p Peer) {
	buf.WriteString(`{"pubKeyHash": `)
	writeString(buf, p.PubKeyHash)
	buf.WriteString(`, "macHash": `)
	writeString(buf, p.MacHash)
	buf.WriteString(`, "ip": `)
	writeString(buf, p.IP)
	buf.WriteString(`, "neighbors": [`)
	for i, n := range p.Neighbors {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeString(buf, n)
	}
	buf.WriteString(`]}`)
}

// writeString writes s as a quoted JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}
