package models_base

// pad4 rounds n up to the next multiple of four octets. AVP payloads
// are padded to 32-bit boundaries on the wire; the pad octets do not
// count toward the AVP length field.
func pad4(n int) int {
	return (n + 3) &^ 3
}
