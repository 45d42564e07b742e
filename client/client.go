// Package client drives one verification run against an authority: it asks
// for an inclusion proof per item, folds each proof locally and partitions
// the items into valid and invalid against the known root digest.
package client

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"merkle-validity-service/service"
	"merkle-validity-service/wire"
)

const (
	requestLabel    = "send nodes to validate transaction"
	endSessionLabel = "close session"
)

// MerkleValidityRequest holds everything one run needs: where the authority
// listens, the root digest the client already trusts, and the ordered items
// to check. Build one per run through the Builder; instances are not reused.
type MerkleValidityRequest struct {
	authAddr string
	authPort int
	root     string
	items    []string
	hash     service.HashFunc
	timeout  time.Duration
}

// Builder assembles a MerkleValidityRequest incrementally.
type Builder struct {
	req MerkleValidityRequest
}

// NewBuilder starts a request against the authority at addr:port whose tree
// is committed to by merkleRoot.
func NewBuilder(addr string, port int, merkleRoot string) *Builder {
	return &Builder{req: MerkleValidityRequest{
		authAddr: addr,
		authPort: port,
		root:     merkleRoot,
		hash:     service.MD5Hex,
	}}
}

// AddValidityCheck appends an item to verify. Items are checked in the
// order they were added.
func (b *Builder) AddValidityCheck(item string) *Builder {
	b.req.items = append(b.req.items, item)
	return b
}

// WithHash swaps the digest primitive. It must match the one the
// authority's tree was built with.
func (b *Builder) WithHash(hash service.HashFunc) *Builder {
	b.req.hash = hash
	return b
}

// WithTimeout sets a per-exchange I/O deadline. Zero keeps the protocol's
// original behavior of blocking until the terminator or a connection error.
func (b *Builder) WithTimeout(d time.Duration) *Builder {
	b.req.timeout = d
	return b
}

func (b *Builder) Build() *MerkleValidityRequest {
	req := b.req
	req.items = append([]string(nil), b.req.items...)
	return &req
}

// Run opens one connection to the authority, obtains and checks a proof for
// every configured item, then ends the session. Each item lands in exactly
// one partition of the result. If the connection cannot be established the
// run yields no results at all.
func (r *MerkleValidityRequest) Run() (*service.ValidationResult, error) {
	addr := net.JoinHostPort(r.authAddr, strconv.Itoa(r.authPort))
	log.Printf("connecting to authority at %s...", addr)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.Printf("unable to establish a connection with the authority: %v", err)
		return nil, fmt.Errorf("connect to authority %s: %w", addr, err)
	}
	defer conn.Close()

	br := bufio.NewReader(conn)
	result := &service.ValidationResult{}
	for _, item := range r.items {
		nodes := r.fetchProof(conn, br, item)
		result.Record(item, service.VerifyInclusion(item, nodes, r.root, r.hash))
	}

	log.Printf("all %d requests evaluated, ending session...", len(r.items))
	if r.timeout > 0 {
		conn.SetDeadline(time.Now().Add(r.timeout))
	}
	if _, err := conn.Write(wire.EncodeRequest(endSessionLabel, wire.EndSessionMsg)); err != nil {
		log.Printf("send session end: %v", err)
	}
	return result, nil
}

// fetchProof requests and collects one item's proof stream. Any failure in
// the exchange yields an empty node list, which verification then
// deterministically classifies as invalid; a partial stream is discarded
// rather than folded.
func (r *MerkleValidityRequest) fetchProof(conn net.Conn, br *bufio.Reader, item string) []string {
	if r.timeout > 0 {
		conn.SetDeadline(time.Now().Add(r.timeout))
	}
	log.Printf("requesting nodes to validate item %s...", item)
	if _, err := conn.Write(wire.EncodeRequest(requestLabel, item)); err != nil {
		log.Printf("unable to send validation request for item %s: %v", item, err)
		return nil
	}

	nodes, err := wire.ReadProofStream(br)
	if err != nil {
		log.Printf("error while reading nodes for item %s: %v", item, err)
		return nil
	}
	log.Printf("received %d nodes for item %s", len(nodes), item)
	return nodes
}
