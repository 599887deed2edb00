package importer

import "github.com/fieldserve/server/internal/sheet"

// Column labels are matched as case-insensitive substrings of the header
// cells, so "Reg Date (dd/mm/yyyy)" and "REG DATE" both resolve.

// offerHeaderMarkers identify the offer sheet's header row.
var offerHeaderMarkers = []string{"s.no", "company"}

// partHeaderMarkers identify the spare-part sheet's header row.
var partHeaderMarkers = []string{"product name", "part id"}

type offerColumns struct {
	seq         int
	regDate     int
	company     int
	location    int
	department  int
	contact     int
	phone       int
	email       int
	serial      int
	productType int
	lead        int
	reference   int
	offerDate   int
	offerValue  int
	offerMonth  int
	poExpected  int
	probability int
	poNumber    int
	poDate      int
	poValue     int
	poReceived  int
	openFunnel  int
	remarks     int
}

func resolveOfferColumns(h *sheet.HeaderRow) offerColumns {
	return offerColumns{
		seq:         h.Column("s.no"),
		regDate:     h.Column("reg date"),
		company:     h.Column("company"),
		location:    h.Column("location"),
		department:  h.Column("department"),
		contact:     h.Column("contact person"),
		phone:       h.Column("contact number"),
		email:       h.Column("mail"),
		serial:      h.Column("machine"),
		productType: h.Column("product type"),
		lead:        h.Column("lead"),
		reference:   h.Column("offer ref"),
		offerDate:   h.Column("offer date"),
		offerValue:  h.Column("offer value"),
		offerMonth:  h.Column("offer month"),
		poExpected:  h.Column("po expected"),
		probability: h.Column("probability"),
		poNumber:    h.Column("po no"),
		poDate:      h.Column("po date"),
		poValue:     h.Column("po value"),
		poReceived:  h.Column("po received"),
		openFunnel:  h.Column("open funnel"),
		remarks:     h.Column("remarks"),
	}
}

type partColumns struct {
	hsn       int
	name      int
	partNo    int
	image     int
	use       int
	model     int
	unit      int
	techSheet int
}

func resolvePartColumns(h *sheet.HeaderRow) partColumns {
	cols := partColumns{
		hsn:       h.Column("hsn"),
		name:      h.Column("product name"),
		partNo:    h.Column("part id"),
		image:     h.Column("image"),
		use:       h.Column("use"),
		model:     h.Column("model"),
		unit:      h.Column("manufacturing"),
		techSheet: h.Column("tech"),
	}
	if cols.image < 0 {
		cols.image = h.Column("brochure")
	}
	return cols
}
