package brandindex

// seedEntries is the deploy-time domain database. It is intentionally a
// curated subset: coverage follows the traffic the resolver actually sees,
// and unknown domains surface through the suggestion log.
var seedEntries = []Entry{
	// Golf equipment
	{Domain: "taylormadegolf.com", Brand: "TaylorMade", Category: "golf", Tier: TierPremium, Aliases: []string{"TMaG"}},
	{Domain: "callawaygolf.com", Brand: "Callaway", Category: "golf", Tier: TierPremium},
	{Domain: "titleist.com", Brand: "Titleist", Category: "golf", Tier: TierPremium, Aliases: []string{"Acushnet"}},
	{Domain: "vokey.com", Brand: "Vokey", Category: "golf", Tier: TierPremium, Aliases: []string{"Titleist Vokey"}},
	{Domain: "ping.com", Brand: "PING", Category: "golf", Tier: TierPremium},
	{Domain: "clevelandgolf.com", Brand: "Cleveland", Category: "golf", Tier: TierPremium},
	{Domain: "mizunogolf.com", Brand: "Mizuno", Category: "golf", Tier: TierPremium},
	{Domain: "srixon.com", Brand: "Srixon", Category: "golf", Tier: TierPremium},
	{Domain: "cobragolf.com", Brand: "Cobra", Category: "golf", Tier: TierPremium, Aliases: []string{"Cobra Puma Golf"}},
	{Domain: "bridgestonegolf.com", Brand: "Bridgestone", Category: "golf", Tier: TierPremium},
	{Domain: "scottycameron.com", Brand: "Scotty Cameron", Category: "golf", Tier: TierLuxury},
	{Domain: "bettinardi.com", Brand: "Bettinardi", Category: "golf", Tier: TierLuxury},
	{Domain: "pxg.com", Brand: "PXG", Category: "golf", Tier: TierLuxury, Aliases: []string{"Parsons Xtreme Golf"}},
	{Domain: "miuragolf.com", Brand: "Miura", Category: "golf", Tier: TierLuxury},
	{Domain: "honmagolf.com", Brand: "Honma", Category: "golf", Tier: TierLuxury},
	{Domain: "xxio-golf.com", Brand: "XXIO", Category: "golf", Tier: TierPremium},
	{Domain: "wilson.com", Brand: "Wilson", Category: "golf", Tier: TierPremium, Aliases: []string{"Wilson Staff"}},

	// Golf apparel and accessories
	{Domain: "footjoy.com", Brand: "FootJoy", Category: "golf", Tier: TierPremium, Aliases: []string{"FJ"}},
	{Domain: "travismathew.com", Brand: "TravisMathew", Category: "golf", Tier: TierPremium},
	{Domain: "petermillar.com", Brand: "Peter Millar", Category: "golf", Tier: TierLuxury},
	{Domain: "gfore.com", Brand: "G/FORE", Category: "golf", Tier: TierLuxury, Aliases: []string{"GFORE"}},
	{Domain: "greysonclothiers.com", Brand: "Greyson", Category: "golf", Tier: TierLuxury},
	{Domain: "johnnie-o.com", Brand: "Johnnie-O", Category: "golf", Tier: TierPremium},
	{Domain: "malbongolf.com", Brand: "Malbon Golf", Category: "golf", Tier: TierLuxury, Aliases: []string{"Malbon"}},
	{Domain: "badbirdie.com", Brand: "Bad Birdie", Category: "golf", Tier: TierMid},
	{Domain: "linksoul.com", Brand: "Linksoul", Category: "golf", Tier: TierLuxury},

	// Golf tech
	{Domain: "bushnellgolf.com", Brand: "Bushnell", Category: "golf", Tier: TierPremium},
	{Domain: "garmin.com", Brand: "Garmin", Category: "tech", Tier: TierPremium},
	{Domain: "shotscope.com", Brand: "Shot Scope", Category: "golf", Tier: TierMid},
	{Domain: "voicecaddie.com", Brand: "Voice Caddie", Category: "golf", Tier: TierMid},
	{Domain: "arccosgolf.com", Brand: "Arccos", Category: "golf", Tier: TierPremium},

	// Sportswear
	{
		Domain: "nike.com", Brand: "Nike", Category: "apparel", Tier: TierPremium,
		PathHints: []PathHint{{Indicator: "t", SlugIndex: 0}},
	},
	{Domain: "adidas.com", Brand: "adidas", Category: "apparel", Tier: TierPremium},
	{Domain: "underarmour.com", Brand: "Under Armour", Category: "apparel", Tier: TierPremium, Aliases: []string{"UA"}},
	{Domain: "newbalance.com", Brand: "New Balance", Category: "apparel", Tier: TierPremium},
	{Domain: "puma.com", Brand: "Puma", Category: "apparel", Tier: TierMid},
	{
		Domain: "lululemon.com", Brand: "lululemon", Category: "apparel", Tier: TierPremium,
		PathHints: []PathHint{{Indicator: "p", SlugIndex: 0}},
		// Heavy client-side rendering; plain fetches return a shell page.
		RequiresRender: true,
	},

	// Tech and audio
	{Domain: "apple.com", Brand: "Apple", Category: "tech", Tier: TierPremium},
	{Domain: "samsung.com", Brand: "Samsung", Category: "tech", Tier: TierPremium},
	{Domain: "sony.com", Brand: "Sony", Category: "tech", Tier: TierPremium},
	{Domain: "bose.com", Brand: "Bose", Category: "audio", Tier: TierPremium},
	{Domain: "sonos.com", Brand: "Sonos", Category: "audio", Tier: TierPremium},
	{Domain: "jbl.com", Brand: "JBL", Category: "audio", Tier: TierMid},
	{Domain: "logitech.com", Brand: "Logitech", Category: "tech", Tier: TierMid},
	{Domain: "anker.com", Brand: "Anker", Category: "tech", Tier: TierMid},

	// Outdoor / EDC
	{Domain: "yeti.com", Brand: "Yeti", Category: "outdoor", Tier: TierPremium},
	{Domain: "hydroflask.com", Brand: "Hydro Flask", Category: "outdoor", Tier: TierMid},
	{Domain: "osprey.com", Brand: "Osprey", Category: "outdoor", Tier: TierPremium},
	{Domain: "benchmade.com", Brand: "Benchmade", Category: "edc", Tier: TierPremium},
	{Domain: "leatherman.com", Brand: "Leatherman", Category: "edc", Tier: TierMid},
	{Domain: "bellroy.com", Brand: "Bellroy", Category: "edc", Tier: TierPremium},

	// Retailers: brand comes from the product slug, not the domain.
	{Domain: "pgatoursuperstore.com", Category: "golf", Tier: TierMid, Retailer: true},
	{Domain: "golfgalaxy.com", Category: "golf", Tier: TierMid, Retailer: true},
	{Domain: "dickssportinggoods.com", Category: "golf", Tier: TierMid, Retailer: true, Aliases: []string{"Dick's"}},
	{Domain: "2ndswing.com", Category: "golf", Tier: TierValue, Retailer: true, Aliases: []string{"2nd Swing"}},
	{Domain: "tgw.com", Category: "golf", Tier: TierMid, Retailer: true, Aliases: []string{"The Golf Warehouse"}},
	{Domain: "globalgolf.com", Category: "golf", Tier: TierValue, Retailer: true},
	{Domain: "carlsgolfland.com", Category: "golf", Tier: TierMid, Retailer: true},

	// The one supported marketplace. Always blocks plain fetches.
	{Domain: "amazon.com", Category: "marketplace", Tier: TierMid, Retailer: true, RequiresRender: true},
	{Domain: "amazon.co.uk", Category: "marketplace", Tier: TierMid, Retailer: true, RequiresRender: true},
	{Domain: "amazon.ca", Category: "marketplace", Tier: TierMid, Retailer: true, RequiresRender: true},
	{Domain: "amazon.de", Category: "marketplace", Tier: TierMid, Retailer: true, RequiresRender: true},
}
