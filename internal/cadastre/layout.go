package cadastre

// Layout names the columns of one extract format. Adding a registry office's
// format is adding a Layout to layouts.
type Layout struct {
	Name        string
	ParcelCol   string
	LocationCol string
	OwnerCol    string
	WalletCol   string
	// DocumentsCol holds one or more URLs separated by DocumentSep.
	DocumentsCol string
	DocumentSep  string
	// ParishCol, when set, is appended to the location.
	ParishCol string
}

func (l Layout) requiredCols() []string {
	cols := []string{l.ParcelCol, l.LocationCol, l.OwnerCol, l.DocumentsCol}
	if l.ParishCol != "" {
		cols = append(cols, l.ParishCol)
	}

	return cols
}

// layouts are tried in order; the more specific ones come first.
var layouts = []Layout{
	{
		Name:         "matriz",
		ParcelCol:    "Artigo matricial",
		LocationCol:  "Localização",
		ParishCol:    "Freguesia",
		OwnerCol:     "NIF titular",
		WalletCol:    "Carteira",
		DocumentsCol: "Documentos",
		DocumentSep:  "|",
	},
	{
		Name:         "standard",
		ParcelCol:    "parcel_identifier",
		LocationCol:  "location",
		OwnerCol:     "owner_id",
		WalletCol:    "owner_wallet_address",
		DocumentsCol: "document_urls",
		DocumentSep:  "|",
	},
}
