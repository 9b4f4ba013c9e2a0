package properties

import "os"

// RootPath is the dataset root directory. Every stage (prepare, ingest,
// materialize) reads and writes below this path.
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

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

func DiscordWarnNotificationUrl() string {
	return os.Getenv("DISCORD_WARN_NOTIFICATION_URL")
}

type Color struct {
	R, G, B uint8
}

// ColorMap assigns preview colors to label classes. Classes missing from the
// map render red so bad class tables are visible immediately.
var ColorMap = map[string]Color{
	"invalid":            {0, 0, 0},
	"Water":              {0, 102, 204},
	"Bare Ground":        {150, 113, 72},
	"Rangeland":          {228, 203, 88},
	"Flooded Vegetation": {67, 181, 181},
	"Trees":              {18, 109, 32},
	"Cropland":           {160, 210, 80},
	"Buildings":          {178, 40, 40},
	"unknown":            {255, 0, 0},
}
