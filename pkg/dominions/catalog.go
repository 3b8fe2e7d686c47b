package dominions

// catalog holds every nation selectable in a lobby, grouped by era.
var catalog = []Nation{
	{5, "Arcoscephale", EraEarly},
	{6, "Ermor", EraEarly},
	{7, "Ulm", EraEarly},
	{8, "Marverni", EraEarly},
	{9, "Sauromatia", EraEarly},
	{10, "T'ien Ch'i", EraEarly},
	{11, "Machaka", EraEarly},
	{12, "Mictlan", EraEarly},
	{13, "Abysia", EraEarly},
	{14, "Caelum", EraEarly},
	{15, "C'tis", EraEarly},
	{16, "Pangaea", EraEarly},
	{17, "Agartha", EraEarly},
	{18, "Tir na n'Og", EraEarly},
	{19, "Fomoria", EraEarly},
	{20, "Vanheim", EraEarly},
	{21, "Helheim", EraEarly},
	{22, "Niefelheim", EraEarly},
	{24, "Rus", EraEarly},
	{25, "Kailasa", EraEarly},
	{26, "Lanka", EraEarly},
	{27, "Yomi", EraEarly},
	{28, "Hinnom", EraEarly},
	{29, "Ur", EraEarly},
	{30, "Berytos", EraEarly},
	{31, "Xibalba", EraEarly},
	{32, "Mekone", EraEarly},
	{33, "Ubar", EraEarly},
	{36, "Atlantis", EraEarly},
	{37, "R'lyeh", EraEarly},
	{38, "Pelagia", EraEarly},
	{39, "Oceania", EraEarly},
	{40, "Therodos", EraEarly},

	{43, "Arcoscephale", EraMiddle},
	{44, "Ermor", EraMiddle},
	{45, "Sceleria", EraMiddle},
	{46, "Pythium", EraMiddle},
	{47, "Man", EraMiddle},
	{48, "Eriu", EraMiddle},
	{49, "Ulm", EraMiddle},
	{50, "Marignon", EraMiddle},
	{51, "Mictlan", EraMiddle},
	{52, "T'ien Ch'i", EraMiddle},
	{53, "Machaka", EraMiddle},
	{54, "Agartha", EraMiddle},
	{55, "Abysia", EraMiddle},
	{56, "Caelum", EraMiddle},
	{57, "C'tis", EraMiddle},
	{58, "Pangaea", EraMiddle},
	{59, "Asphodel", EraMiddle},
	{60, "Vanheim", EraMiddle},
	{61, "Jotunheim", EraMiddle},
	{62, "Vanarus", EraMiddle},
	{63, "Bandar Log", EraMiddle},
	{64, "Shinuyama", EraMiddle},
	{65, "Ashdod", EraMiddle},
	{66, "Uruk", EraMiddle},
	{67, "Nazca", EraMiddle},
	{68, "Xibalba", EraMiddle},
	{69, "Phlegra", EraMiddle},
	{70, "Phaeacia", EraMiddle},
	{71, "Ind", EraMiddle},
	{72, "Na'Ba", EraMiddle},
	{73, "Atlantis", EraMiddle},
	{74, "R'lyeh", EraMiddle},
	{75, "Pelagia", EraMiddle},
	{76, "Oceania", EraMiddle},
	{77, "Ys", EraMiddle},

	{80, "Arcoscephale", EraLate},
	{81, "Pythium", EraLate},
	{82, "Lemuria", EraLate},
	{83, "Man", EraLate},
	{84, "Ulm", EraLate},
	{85, "Marignon", EraLate},
	{86, "Mictlan", EraLate},
	{87, "T'ien Ch'i", EraLate},
	{89, "Jomon", EraLate},
	{90, "Agartha", EraLate},
	{91, "Abysia", EraLate},
	{92, "Caelum", EraLate},
	{93, "C'tis", EraLate},
	{94, "Pangaea", EraLate},
	{95, "Midgard", EraLate},
	{96, "Utgard", EraLate},
	{97, "Bogarus", EraLate},
	{98, "Patala", EraLate},
	{99, "Gath", EraLate},
	{100, "Ragha", EraLate},
	{101, "Xibalba", EraLate},
	{102, "Phlegra", EraLate},
	{103, "Atlantis", EraLate},
	{104, "R'lyeh", EraLate},
	{106, "Erytheia", EraLate},
}

var catalogByID = func() map[uint32]Nation {
	m := make(map[uint32]Nation, len(catalog))
	for _, n := range catalog {
		m[n.ID] = n
	}
	return m
}()

// NationByID looks up a catalog nation by its id.
func NationByID(id uint32) (Nation, bool) {
	n, ok := catalogByID[id]
	return n, ok
}

// NationsForEra returns the catalog nations of one era in catalog order.
func NationsForEra(era Era) []Nation {
	var out []Nation
	for _, n := range catalog {
		if n.Era == era {
			out = append(out, n)
		}
	}
	return out
}
