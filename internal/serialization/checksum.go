package serialization

import "crypto/sha256"

// Checksum returns the SHA-256 digest of a tensor's stored bytes, in the
// file's own dtype. Two files hold the same tensor data exactly when the
// digests and headers match.
func (r *Reader) Checksum(name string) ([sha256.Size]byte, error) {
	data, err := r.TensorData(name)
	if err != nil {
		return [sha256.Size]byte{}, err
	}
	return sha256.Sum256(data), nil
}
