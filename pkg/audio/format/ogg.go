// ABOUTME: Ogg page parser and packet assembler
// ABOUTME: Splits an Ogg bitstream into codec packets with CRC checks and resync
package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	log "github.com/sirupsen/logrus"
)

const (
	oggHeaderSize   = 27
	oggContinued    = 0x01
	oggMaxPageBytes = oggHeaderSize + 255 + 255*255
)

// oggPage is one parsed Ogg page
type oggPage struct {
	offset     int64
	headerType byte
	granule    int64
	serial     uint32
	segments   []byte
	body       []byte
}

// oggCRCTable is the unreflected CRC-32 table with polynomial 0x04c11db7
var oggCRCTable = func() [256]uint32 {
	var t [256]uint32
	for i := range t {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

func oggCRC(crc uint32, b []byte) uint32 {
	for _, v := range b {
		crc = crc<<8 ^ oggCRCTable[byte(crc>>24)^v]
	}
	return crc
}

var errBadOggCRC = errors.New("ogg page checksum mismatch")

// oggStream reads pages from an io.ReadSeeker and reassembles packets
type oggStream struct {
	r       io.ReadSeeker
	offset  int64 // file offset of the next unread byte
	serial  uint32
	locked  bool // serial has been chosen
	partial []byte   // packet continued from the previous page
	packets [][]byte // complete packets not yet handed out
	granule int64    // granule of the page the queued packets came from
	dropCon bool     // discard a continued packet at the next page
	skipped int      // pages dropped for bad checksums
}

func newOggStream(r io.ReadSeeker) *oggStream {
	return &oggStream{r: r}
}

// readPage reads the next page, scanning forward for a capture pattern if needed
func (s *oggStream) readPage() (*oggPage, error) {
	for {
		page, err := s.readPageAt()
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, errBadOggCRC) {
			return nil, err
		}
		s.skipped++
		log.Printf("Ogg: dropping corrupt page at offset %d", page.offset)
	}
}

func (s *oggStream) readPageAt() (*oggPage, error) {
	var header [oggHeaderSize]byte
	if err := s.sync(header[:]); err != nil {
		return nil, err
	}

	page := &oggPage{
		offset:     s.offset - oggHeaderSize,
		headerType: header[5],
		granule:    int64(binary.LittleEndian.Uint64(header[6:14])),
		serial:     binary.LittleEndian.Uint32(header[14:18]),
	}
	want := binary.LittleEndian.Uint32(header[22:26])

	page.segments = make([]byte, header[26])
	if err := s.read(page.segments); err != nil {
		return nil, err
	}

	bodyLen := 0
	for _, l := range page.segments {
		bodyLen += int(l)
	}
	page.body = make([]byte, bodyLen)
	if err := s.read(page.body); err != nil {
		return nil, err
	}

	binary.LittleEndian.PutUint32(header[22:26], 0)
	crc := oggCRC(0, header[:])
	crc = oggCRC(crc, page.segments)
	crc = oggCRC(crc, page.body)
	if crc != want {
		return page, errBadOggCRC
	}
	return page, nil
}

// sync fills header with the next page header, skipping garbage before "OggS"
func (s *oggStream) sync(header []byte) error {
	if err := s.read(header[:4]); err != nil {
		return err
	}
	skipped := 0
	for !bytes.Equal(header[:4], magicOgg) {
		if skipped > oggMaxPageBytes {
			return errors.New("lost ogg sync")
		}
		copy(header[0:3], header[1:4])
		if err := s.read(header[3:4]); err != nil {
			return err
		}
		skipped++
	}
	return s.read(header[4:oggHeaderSize])
}

func (s *oggStream) read(b []byte) error {
	n, err := io.ReadFull(s.r, b)
	s.offset += int64(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return io.EOF
	}
	return err
}

// nextPacket returns the next complete packet of the selected serial
func (s *oggStream) nextPacket() ([]byte, error) {
	for len(s.packets) == 0 {
		page, err := s.readPage()
		if err != nil {
			return nil, err
		}
		if !s.locked {
			s.serial = page.serial
			s.locked = true
		}
		if page.serial != s.serial {
			continue
		}
		s.addPage(page)
	}

	pkt := s.packets[0]
	s.packets = s.packets[1:]
	return pkt, nil
}

// addPage splits a page body into packets using its lacing values
func (s *oggStream) addPage(page *oggPage) {
	if page.headerType&oggContinued == 0 {
		s.partial = nil
	}
	drop := s.dropCon && page.headerType&oggContinued != 0
	s.dropCon = false

	body := page.body
	for _, l := range page.segments {
		s.partial = append(s.partial, body[:l]...)
		body = body[l:]
		if l < 255 {
			if drop {
				drop = false
			} else {
				s.packets = append(s.packets, s.partial)
			}
			s.partial = nil
		}
	}
	if drop {
		s.partial = nil
	}
	s.granule = page.granule
}

// seekTo repositions the stream at the page starting at offset
func (s *oggStream) seekTo(offset int64) error {
	if _, err := s.r.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	s.offset = offset
	s.partial = nil
	s.packets = nil
	s.dropCon = true
	return nil
}

// skipPage reads the header of the next page and skips its body, for
// scanning without reassembling packets
func (s *oggStream) skipPage() (*oggPage, error) {
	var header [oggHeaderSize]byte
	if err := s.sync(header[:]); err != nil {
		return nil, err
	}
	page := &oggPage{
		offset:     s.offset - oggHeaderSize,
		headerType: header[5],
		granule:    int64(binary.LittleEndian.Uint64(header[6:14])),
		serial:     binary.LittleEndian.Uint32(header[14:18]),
	}
	page.segments = make([]byte, header[26])
	if err := s.read(page.segments); err != nil {
		return nil, err
	}
	bodyLen := 0
	for _, l := range page.segments {
		bodyLen += int(l)
	}
	if _, err := s.r.Seek(int64(bodyLen), io.SeekCurrent); err != nil {
		return nil, err
	}
	s.offset += int64(bodyLen)
	return page, nil
}

// lastGranule finds the granule position of the final page of serial
func lastGranule(r io.ReadSeeker, serial uint32) (int64, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	start := max(end-oggMaxPageBytes, 0)
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return 0, err
	}
	tail := make([]byte, end-start)
	if _, err := io.ReadFull(r, tail); err != nil {
		return 0, err
	}

	for i := bytes.LastIndex(tail, magicOgg); i >= 0; i = bytes.LastIndex(tail[:i], magicOgg) {
		if len(tail)-i < oggHeaderSize {
			continue
		}
		h := tail[i:]
		granule := int64(binary.LittleEndian.Uint64(h[6:14]))
		if binary.LittleEndian.Uint32(h[14:18]) == serial && granule >= 0 {
			return granule, nil
		}
	}
	return 0, errors.New("no final ogg page found")
}
