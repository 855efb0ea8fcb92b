package serde

// BinarySerde converts between native values and their encoded form.
type BinarySerde interface {
	SerializeBinary(value any) ([]byte, error)
	DeserializeBinary(data []byte, valuePtr any) error
}

// Codec is a BinarySerde that can name its encoding on the wire.
type Codec interface {
	BinarySerde
	Encoding() string
}
