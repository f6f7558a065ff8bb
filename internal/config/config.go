package config

const (
	DefaultTimeZone = "America/Argentina/Buenos_Aires"

	// Historic official-dollar series, one entry per day with buy/sell quotes.
	DefaultCotizacionesURL = "https://api.argentinadatos.com/v1/cotizaciones/dolares/oficial"

	// Refresh missing monthly rates once a day, after market close.
	DefaultFXSchedule = "0 19 * * *"

	// Report ingestion progress every N normalized rows.
	ProgressInterval = 1000
	// Rough upper bound of rows per export, used to scale progress below 100.
	EstimatedRowsPerFile = 30000

	DefaultCotizacionesFile = "data/cotizaciones.json"
	DefaultUsageFile        = "data/uso.json"
)
