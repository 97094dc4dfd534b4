// Package crc8 implements the CRC-8 checksum used to seal FLAC frame
// headers, polynomial 0x07 (the "ATM HEC" polynomial), computed MSB-first
// with no input or output reflection and a zero initial value.
package crc8

import "github.com/vantablac/flake/internal/hashutil"

// Size is the number of bytes a CRC-8 checksum occupies.
const Size = 1

// Polynomial is the generator polynomial, x^8 + x^2 + x + 1.
const Polynomial = 0x07

var table = makeTable(Polynomial)

func makeTable(poly uint8) [256]uint8 {
	var t [256]uint8
	for i := 0; i < 256; i++ {
		crc := uint8(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

type digest struct {
	crc uint8
}

// New returns a new hashutil.Hash8 computing the CRC-8/ATM checksum.
func New() hashutil.Hash8 {
	return &digest{}
}

func (d *digest) Write(p []byte) (n int, err error) {
	crc := d.crc
	for _, b := range p {
		crc = table[crc^b]
	}
	d.crc = crc
	return len(p), nil
}

func (d *digest) Sum(b []byte) []byte {
	return append(b, d.crc)
}

func (d *digest) Reset() { d.crc = 0 }

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return 1 }

// Sum8 returns the current CRC-8 checksum.
func (d *digest) Sum8() uint8 { return d.crc }

// Checksum returns the CRC-8 checksum of data.
func Checksum(data []byte) uint8 {
	d := digest{}
	d.Write(data)
	return d.crc
}
