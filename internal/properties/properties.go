package properties

import "os"

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

func CopernicusClientID() string {
	return os.Getenv("COPERNICUS_CLIENT_ID")
}

func CopernicusClientSecret() string {
	return os.Getenv("COPERNICUS_CLIENT_SECRET")
}

func CopernicusTokenURL() string {
	return os.Getenv("COPERNICUS_TOKEN_URL")
}

func ProcessAPIURL() string {
	if url := os.Getenv("COPERNICUS_PROCESS_URL"); url != "" {
		return url
	}
	return "https://sh.dataspace.copernicus.eu/api/v1/process"
}

func CatalogAPIURL() string {
	if url := os.Getenv("COPERNICUS_CATALOG_URL"); url != "" {
		return url
	}
	return "https://sh.dataspace.copernicus.eu/api/v1/catalog/1.0.0/search"
}

type Color struct {
	R, G, B uint8
}

// ClusterPalette colors the labeled land-cover classes. Labels wrap around
// when a run uses more clusters than the palette has entries.
var ClusterPalette = []Color{
	{230, 25, 75},
	{60, 180, 75},
	{255, 225, 25},
	{0, 130, 200},
	{245, 130, 48},
	{145, 30, 180},
	{70, 240, 240},
	{240, 50, 230},
	{210, 245, 60},
	{250, 190, 190},
	{0, 128, 128},
	{230, 190, 255},
	{170, 110, 40},
	{255, 250, 200},
	{128, 0, 0},
	{170, 255, 195},
	{128, 128, 0},
	{255, 215, 180},
	{0, 0, 128},
	{128, 128, 128},
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
