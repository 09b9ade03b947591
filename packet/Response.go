/*
File Name:  Response.go

Transmute, Verify and Open implement the three producer/router/consumer
operations over a Response: a producer transmutes a Request into a
signed (and optionally sealed) Response; any router can verify the
signature without being able to read the payload; only the holder of
the request_pid private key can open an encrypted Response.
*/

package packet

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/narrowmesh/core/hbfi"
	"github.com/narrowmesh/core/identity"
)

// Response is the Narrow-Waist Response packet.
type Response struct {
	Kind      Kind
	HBFI      hbfi.HBFI
	Nonce     [NonceSize]byte
	Data      [FragmentSize]byte
	Offset    uint64
	Total     uint64
	Signature [SignatureSize]byte
	Tag       [TagSize]byte // zero-filled for cleartext responses
}

// Transmute builds a signed Response for req, sealing the payload to
// req.HBFI.RequestPID when present. randSource supplies the fresh
// nonce; pass crypto/rand.Reader in production code and a
// deterministic reader in tests.
func Transmute(producer identity.Private, req Request, payload []byte, offset, total uint64, randSource io.Reader) (Response, error) {
	if len(payload) > MaxPayload {
		return Response{}, ErrPayloadTooLarge
	}

	var plain [FragmentSize]byte
	copy(plain[:], payload)
	binary.BigEndian.PutUint16(plain[FragmentSize-2:FragmentSize], uint16(len(payload)))

	var nonce [NonceSize]byte
	if randSource == nil {
		randSource = rand.Reader
	}
	if _, err := io.ReadFull(randSource, nonce[:]); err != nil {
		return Response{}, err
	}

	resp := Response{
		HBFI:   req.HBFI,
		Nonce:  nonce,
		Offset: offset,
		Total:  total,
	}

	if req.HBFI.IsEncrypted() {
		secret, err := producer.SharedSecret(req.HBFI.RequestPID)
		if err != nil {
			return Response{}, err
		}
		key, err := deriveAEADKey(secret)
		if err != nil {
			return Response{}, err
		}
		aead, err := newXChaCha(key)
		if err != nil {
			return Response{}, err
		}
		sealed := aead.Seal(nil, expandNonce(nonce), plain[:], nil)
		copy(resp.Data[:], sealed[:FragmentSize])
		copy(resp.Tag[:], sealed[FragmentSize:])
		resp.Kind = KindResponseCiphertext
	} else {
		resp.Data = plain
		resp.Kind = KindResponseCleartext
	}

	sig := producer.Sign(resp.signedPreimage())
	copy(resp.Signature[:], sig)

	return resp, nil
}

// signedPreimage is (kind || hbfi || nonce || data || offset || total),
// the exact byte sequence the producer signs (§6).
func (r Response) signedPreimage() []byte {
	out := make([]byte, 0, 2+hbfi.Size+NonceSize+FragmentSize+8+8)
	var kindBuf [2]byte
	binary.BigEndian.PutUint16(kindBuf[:], uint16(r.Kind))
	out = append(out, kindBuf[:]...)
	out = append(out, r.HBFI.Encode()...)
	out = append(out, r.Nonce[:]...)
	out = append(out, r.Data[:]...)
	var offsetBuf, totalBuf [8]byte
	binary.BigEndian.PutUint64(offsetBuf[:], r.Offset)
	binary.BigEndian.PutUint64(totalBuf[:], r.Total)
	out = append(out, offsetBuf[:]...)
	out = append(out, totalBuf[:]...)
	return out
}

// Verify checks resp's Ed25519 signature under expectedProducer,
// returning ErrInvalidSignature or ErrTypeTagUnknown on failure. It
// never inspects or opens the AEAD payload.
func Verify(resp Response, expectedProducer identity.Public) error {
	switch resp.Kind {
	case KindResponseCleartext, KindResponseCiphertext:
	default:
		return ErrTypeTagUnknown
	}
	if !identity.Verify(expectedProducer, resp.signedPreimage(), resp.Signature[:]) {
		return ErrInvalidSignature
	}
	return nil
}

// Open decrypts an encrypted Response's payload for consumer, the
// holder of the request_pid private key. Cleartext Responses return
// their payload directly.
func Open(resp Response, consumer identity.Private) ([]byte, error) {
	switch resp.Kind {
	case KindResponseCleartext:
		n := binary.BigEndian.Uint16(resp.Data[FragmentSize-2:])
		if int(n) > MaxPayload {
			return nil, ErrSizeMismatch
		}
		out := make([]byte, n)
		copy(out, resp.Data[:n])
		return out, nil
	case KindResponseCiphertext:
		if resp.HBFI.RequestPID != consumer.Public() {
			return nil, ErrNotEncryptedForMe
		}
		secret, err := consumer.SharedSecret(resp.HBFI.ResponsePID)
		if err != nil {
			return nil, err
		}
		key, err := deriveAEADKey(secret)
		if err != nil {
			return nil, err
		}
		aead, err := newXChaCha(key)
		if err != nil {
			return nil, err
		}
		sealed := make([]byte, 0, FragmentSize+TagSize)
		sealed = append(sealed, resp.Data[:]...)
		sealed = append(sealed, resp.Tag[:]...)
		plain, err := aead.Open(nil, expandNonce(resp.Nonce), sealed, nil)
		if err != nil {
			return nil, ErrAeadAuth
		}
		n := binary.BigEndian.Uint16(plain[FragmentSize-2:])
		if int(n) > MaxPayload {
			return nil, ErrSizeMismatch
		}
		out := make([]byte, n)
		copy(out, plain[:n])
		return out, nil
	default:
		return nil, ErrTypeTagUnknown
	}
}
