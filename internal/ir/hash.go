package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainProgram separates program identity hashes from any other hash.
// The version suffix allows a future algorithm migration.
const DomainProgram = "seqmin/program/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramID computes the content-addressed ID of a program.
//
// Comments are EXCLUDED: the ID identifies what the program does, so
// re-annotating a program keeps its ID. The stored canonical JSON still
// carries the comments.
func ProgramID(p *Program) (string, error) {
	canonical, err := MarshalCanonical(p.Clone().StripComments())
	if err != nil {
		return "", fmt.Errorf("ProgramID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// MustProgramID is like ProgramID but panics on error.
// Use only in tests or when the program is known to be valid.
func MustProgramID(p *Program) string {
	id, err := ProgramID(p)
	if err != nil {
		panic(err)
	}
	return id
}
