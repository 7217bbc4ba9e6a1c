package iso7816

// SelectByAID builds SELECT by DF name (P1 '04'), first or only occurrence.
// Le is left out: contact cards on T=0 reject a case 4 command and answer
// '61 XX' instead. Callers set Ne when talking to a proximity card.
func SelectByAID(cla Class, aid []byte) *CommandAPDU {
	return NewCommandAPDU(cla, mustInstruction(INS_SELECT), 0x04, 0x00, aid, 0)
}

// ReadRecord builds READ RECORD of record number rec in the file identified
// by a short EF identifier (P2 = SFI << 3 | 100b).
func ReadRecord(cla Class, sfi, rec byte) *CommandAPDU {
	return NewCommandAPDU(cla, mustInstruction(INS_READ_RECORD), rec, sfi<<3|0x04, nil, MaxShortLe)
}

// GetData builds GET DATA for a primitive data object; P1-P2 carry the tag.
func GetData(cla Class, tag uint16) *CommandAPDU {
	return NewCommandAPDU(cla, mustInstruction(INS_GET_DATA), byte(tag>>8), byte(tag), nil, MaxShortLe)
}

// GetResponse builds GET RESPONSE for ne bytes (0 asks for the maximum).
// The class keeps the logical channel of cla with chaining cleared.
func GetResponse(cla Class, ne int) *CommandAPDU {
	cla.IsChained = false
	if ne == 0 {
		ne = MaxShortLe
	}
	return NewCommandAPDU(cla, mustInstruction(INS_GET_RESPONSE), 0x00, 0x00, nil, ne)
}
