package catalog

// Default returns the built-in Estonian starter catalog, used when no catalog
// file is configured.
func Default(opts ...Option) (*Catalog, error) {
	return New(map[string]map[string][]WordItem{
		"A1": {
			"greetings": {
				{ID: "w_tere", Text: "Tere", IPA: "ˈte.re", Translation: "Hello", Example: "Tere! Kuidas läheb?"},
				{ID: "w_aitaeh", Text: "Aitäh", IPA: "ɑi̯ˈtæh", Translation: "Thank you", Example: "Aitäh abi eest!"},
				{ID: "w_palun", Text: "Palun", IPA: "ˈpɑ.lun", Translation: "Please / You're welcome", Example: "Palun, võta istet."},
				{ID: "w_naegemist", Text: "Nägemist", IPA: "ˈnæ.ge.mist", Translation: "Goodbye", Example: "Nägemist, homseni!"},
			},
			"food": {
				{ID: "w_leib", Text: "Leib", IPA: "ˈlei̯b", Translation: "Bread (rye)", Example: "Leib on laual."},
				{ID: "w_piim", Text: "Piim", IPA: "ˈpiːm", Translation: "Milk", Example: "Klaas piima, palun."},
				{ID: "w_vesi", Text: "Vesi", IPA: "ˈʋe.si", Translation: "Water", Example: "Vesi on külm."},
				{ID: "w_kohv", Text: "Kohv", IPA: "ˈkohʋ", Translation: "Coffee", Example: "Kohv on kuum."},
			},
		},
		"A2": {
			"phrases": {
				{ID: "w_vabandust", Text: "Vabandust", IPA: "ˈʋɑ.bɑn.dust", Translation: "Excuse me / Sorry", Example: "Vabandust, kus on jaam?"},
				{ID: "w_kuidas_laeheb", Text: "Kuidas läheb", IPA: "ˈkui̯.dɑs ˈlæ.heb", Translation: "How are you", Example: "Tere, kuidas läheb?"},
				{ID: "w_tervist", Text: "Tervist", IPA: "ˈter.ʋist", Translation: "Greetings", Example: "Tervist kõigile!"},
			},
		},
	}, opts...)
}
