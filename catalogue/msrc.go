package catalogue

// MSRC v2 object class recognition database, 21-class variant (Shotton et al.).
// horse and mountain are folded into void.
var msrcClasses = []Class{
	{"building", rgb255(128, 0, 0)},
	{"grass", rgb255(0, 128, 0)},
	{"tree", rgb255(128, 128, 0)},
	{"cow", rgb255(0, 0, 128)},
	{"sheep", rgb255(0, 128, 128)},
	{"sky", rgb255(128, 128, 128)},
	{"aeroplane", rgb255(192, 0, 0)},
	{"water", rgb255(64, 128, 0)},
	{"face", rgb255(192, 128, 0)},
	{"car", rgb255(64, 0, 128)},
	{"bicycle", rgb255(192, 0, 128)},
	{"flower", rgb255(64, 128, 128)},
	{"sign", rgb255(192, 128, 128)},
	{"bird", rgb255(0, 64, 0)},
	{"book", rgb255(128, 64, 0)},
	{"chair", rgb255(0, 192, 0)},
	{"road", rgb255(128, 64, 128)},
	{"cat", rgb255(0, 192, 128)},
	{"dog", rgb255(128, 192, 128)},
	{"body", rgb255(64, 64, 0)},
	{"boat", rgb255(192, 64, 0)},
	{"void", rgb255(0, 0, 0)},
}

// MSRCVoidID is the void label of the MSRC catalogue.
const MSRCVoidID = 21

// MSRC returns the MSRC-v2 catalogue.
func MSRC() *Catalogue {
	classes := make([]Class, len(msrcClasses))
	copy(classes, msrcClasses)
	c, err := New(classes, MSRCVoidID)
	if err != nil {
		panic(err)
	}
	return c
}
