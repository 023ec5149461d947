// Package traceroute provides a TCP SYN traceroute built on raw sockets.
//
// It exposes a [Client] for tracing the route to a [Target] with
// configurable [Options].
// Under the hood it crafts IPv4+TCP SYN segments with increasing TTLs,
// sends them through a raw socket with IP_HDRINCL and polls a raw ICMP
// and a raw TCP socket for the answers. Routers on the path answer with
// ICMP time exceeded or destination unreachable messages quoting the
// probe, the destination itself answers with SYN-ACK or RST.
//
// Key features:
//   - Hand-built IPv4 and TCP headers with their checksums, no cgo
//   - Strict reply matching: ICMP errors must quote our addresses and
//     ports, TCP replies must come back from the probed address and port
//   - Three sequential probes per TTL sharing one timeout budget for
//     both reply kinds, so a late SYN-ACK is not lost behind an ICMP error
//   - Built-in OpenTelemetry spans and events for every hop and reply
//   - Optional reverse DNS and location lookups of every hop
//
// Typical usage:
//
//	client := traceroute.NewClient(nil)
//	opts   := &traceroute.Options{MaxTTL: 30, Timeout: time.Second}
//	res, err := client.Run(ctx, traceroute.Target{Address: "example.com", Port: 443}, opts)
//	// res.Hops holds one Hop per probed TTL
//
// Opening raw sockets requires root or the NET_RAW capability.
package traceroute
