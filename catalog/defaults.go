package catalog

// defaultEntries approximates common plastic-jacketed steel (KMR) pipes in
// insulation series 1 and 2 plus PE 100 SDR 17 service pipes.
var defaultEntries = []Entry{
	{"KMR 20/90-1v", "KMR", "1v", 20, 21.7, 0.1, 0.95},
	{"KMR 25/90-1v", "KMR", "1v", 25, 28.5, 0.1, 1.05},
	{"KMR 32/110-1v", "KMR", "1v", 32, 37.2, 0.1, 1.10},
	{"KMR 40/110-1v", "KMR", "1v", 40, 43.1, 0.1, 1.25},
	{"KMR 50/125-1v", "KMR", "1v", 50, 54.5, 0.1, 1.35},
	{"KMR 65/140-1v", "KMR", "1v", 65, 70.3, 0.1, 1.55},
	{"KMR 80/160-1v", "KMR", "1v", 80, 82.5, 0.1, 1.65},
	{"KMR 100/200-1v", "KMR", "1v", 100, 107.1, 0.1, 1.75},
	{"KMR 20/110-2v", "KMR", "2v", 20, 21.7, 0.1, 0.75},
	{"KMR 25/110-2v", "KMR", "2v", 25, 28.5, 0.1, 0.85},
	{"KMR 32/125-2v", "KMR", "2v", 32, 37.2, 0.1, 0.90},
	{"KMR 40/125-2v", "KMR", "2v", 40, 43.1, 0.1, 1.00},
	{"KMR 50/140-2v", "KMR", "2v", 50, 54.5, 0.1, 1.10},
	{"KMR 65/160-2v", "KMR", "2v", 65, 70.3, 0.1, 1.25},
	{"KMR 80/180-2v", "KMR", "2v", 80, 82.5, 0.1, 1.30},
	{"KMR 100/225-2v", "KMR", "2v", 100, 107.1, 0.1, 1.35},
	{"KMR 125/250-2v", "KMR", "2v", 125, 132.5, 0.1, 1.45},
	{"KMR 150/280-2v", "KMR", "2v", 150, 160.3, 0.1, 1.55},
	{"KMR 200/355-2v", "KMR", "2v", 200, 210.1, 0.1, 1.70},
	{"KMR 250/450-2v", "KMR", "2v", 250, 263.0, 0.1, 1.80},
	{"KMR 300/500-2v", "KMR", "2v", 300, 312.7, 0.1, 1.95},
	{"PE 100 SDR17 32", "PE 100", "none", 32, 28.0, 0.007, 2.90},
	{"PE 100 SDR17 63", "PE 100", "none", 63, 55.4, 0.007, 3.30},
	{"PE 100 SDR17 110", "PE 100", "none", 110, 97.0, 0.007, 3.80},
	{"PE 100 SDR17 160", "PE 100", "none", 160, 141.2, 0.007, 4.30},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		panic(err)
	}

	return c
}
