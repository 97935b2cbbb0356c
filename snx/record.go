package snx

import (
	"bytes"
	"encoding/hex"
	"net/netip"

	"github.com/sagernet/sing/common/binary"
	E "github.com/sagernet/sing/common/exceptions"
)

const (
	// RecordLength is the value of the length field, the size of everything
	// after the magic and the length field itself.
	RecordLength = 0x3d0
	recordHeader = 8
)

var RecordMagic = [4]byte{0x13, 0x11, 0x00, 0x00}

// RecordByteOrder is the native order of the x86 snx builds the record was
// taken from.
var RecordByteOrder = binary.LittleEndian

// Record is the handshake passed to the helper's control socket. The field
// order and widths are the wire layout; there is no padding between fields.
type Record struct {
	Magic       [4]byte
	Length      uint32
	GatewayIP   uint32
	GatewayHost [64]byte
	Port        uint32
	Reserved    [6]byte
	ServerCN    [256]byte
	UserName    [256]byte
	Password    [128]byte
	Fingerprint [256]byte
	Trailer     uint16
}

func NewRecord() *Record {
	return &Record{
		Magic:   RecordMagic,
		Length:  RecordLength,
		Trailer: 1,
	}
}

func (r *Record) Encode() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Grow(RecordLength + recordHeader)
	err := binary.Write(&buffer, RecordByteOrder, r)
	if err != nil {
		return nil, E.Cause(err, "encode handshake record")
	}
	if buffer.Len() != int(r.Length)+recordHeader {
		return nil, &LayoutError{Declared: r.Length, Actual: buffer.Len()}
	}
	return buffer.Bytes(), nil
}

func DecodeRecord(content []byte) (*Record, error) {
	var record Record
	if len(content) != RecordLength+recordHeader {
		return nil, &LayoutError{Declared: RecordLength, Actual: len(content)}
	}
	err := binary.Read(bytes.NewReader(content), RecordByteOrder, &record)
	if err != nil {
		return nil, E.Cause(err, "decode handshake record")
	}
	if record.Magic != RecordMagic {
		return nil, E.New("bad handshake record magic: ", hex.EncodeToString(record.Magic[:]))
	}
	if record.Length != RecordLength {
		return nil, &LayoutError{Declared: record.Length, Actual: len(content)}
	}
	return &record, nil
}

func (r *Record) SetGateway(address netip.Addr) {
	r.GatewayIP = binary.BigEndian.Uint32(address.AsSlice())
}

func (r *Record) Gateway() netip.Addr {
	var address [4]byte
	binary.BigEndian.PutUint32(address[:], r.GatewayIP)
	return netip.AddrFrom4(address)
}

func (r *Record) Host() string {
	return cString(r.GatewayHost[:])
}

func (r *Record) CommonName() string {
	return cString(r.ServerCN[:])
}

func (r *Record) User() string {
	return cString(r.UserName[:])
}

// PasswordField returns the password as carried in the record.
func (r *Record) PasswordField() string {
	return cString(r.Password[:])
}

func (r *Record) ServerFingerprint() string {
	return cString(r.Fingerprint[:])
}

// putString copies value into a fixed field, truncating what does not fit.
func putString(field []byte, value string) {
	clear(field)
	copy(field, value)
}

func cString(field []byte) string {
	if index := bytes.IndexByte(field, 0); index >= 0 {
		field = field[:index]
	}
	return string(field)
}
