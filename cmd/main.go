package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/boundary"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/clustering"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/delivery"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/notification"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/sentinel"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/utils"
)

const defaultResolution = 20

func printBanner() {
	figure1 := figure.NewFigure("LandCover", "isometric1", true)
	figure2 := figure.NewFigure("CLI", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Printf("\033[34m%s\033[0m", prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readDate(reader *bufio.Reader, prompt string) (time.Time, error) {
	text := readLine(reader, prompt)
	return time.Parse("2006-01-02", text)
}

func readResolution(reader *bufio.Reader) int {
	text := readLine(reader, fmt.Sprintf("Enter the resolution in meters (default %d): ", defaultResolution))
	if text == "" {
		return defaultResolution
	}
	res, err := strconv.Atoi(text)
	if err != nil || res <= 0 {
		fmt.Printf("\n\033[33mInvalid resolution, using %dm.\033[0m\n", defaultResolution)
		return defaultResolution
	}
	return res
}

func readYesNo(reader *bufio.Reader, prompt string) bool {
	text := strings.ToLower(readLine(reader, prompt))
	return text == "y" || text == "yes"
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mPlease check the input and try again.\033[0m\n")
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("LandCover CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			err := notification.SendDiscordErrorNotification(errMessage)
			if err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. List study areas\033[0m")
		fmt.Println("\033[34m2. List available scene dates\033[0m")
		fmt.Println("\033[34m3. Download a scene\033[0m")
		fmt.Println("\033[34m4. Preview a scene (false-color PNG)\033[0m")
		fmt.Println("\033[34m5. Run land-cover clustering\033[0m")
		fmt.Println("\033[34m6. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		choiceText, _ := reader.ReadString('\n')
		choice, err := strconv.Atoi(strings.TrimSpace(choiceText))
		if err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			continue
		}

		switch choice {
		case 1:
			fmt.Println("\033[33m\nWarning:\033[0m")
			fmt.Println("\033[33mTo add a study area, put its '.geojson' boundary at 'data/boundaries' folder.\n\033[0m")

			areas, err := boundary.ListAreas()
			if err != nil {
				fmt.Printf("\n\033[31mError reading boundaries folder: %s\033[0m\n", err.Error())
				continue
			}
			fmt.Println("\033[32m\nAvailable study areas:\033[0m")
			for _, area := range areas {
				fmt.Printf("\033[32m- %s\033[0m\n", area)
			}
		case 2:
			area := readLine(reader, "Enter the study area name: ")
			from, err := readDate(reader, "Enter the start date (YYYY-MM-DD): ")
			if err != nil {
				fmt.Printf("\n\033[31mInvalid date.\033[0m\n")
				continue
			}
			to, err := readDate(reader, "Enter the end date (YYYY-MM-DD): ")
			if err != nil {
				fmt.Printf("\n\033[31mInvalid date.\033[0m\n")
				continue
			}

			maxCC := 30.0
			if text := readLine(reader, "Enter the maximum cloud cover in percent (default 30): "); text != "" {
				if parsed, err := strconv.ParseFloat(text, 64); err == nil {
					maxCC = parsed
				}
			}

			dates, err := delivery.ListSceneDates(area, from, to, maxCC)
			if err != nil {
				fmt.Printf("\n\033[31mError searching scene dates: %s\033[0m\n", err.Error())
				continue
			}
			if len(dates) == 0 {
				fmt.Printf("\n\033[33mNo scenes below %.0f%% cloud cover in that range.\033[0m\n", maxCC)
				continue
			}

			fmt.Printf("\033[32m\nThese %d days have usable scenes:\033[0m\n", len(dates))
			for _, date := range dates {
				fmt.Printf("\033[32m- %s (%.1f%% cloud cover)\033[0m\n", date.Date.Format("2006-01-02"), date.CloudCover)
			}
		case 3:
			area := readLine(reader, "Enter the study area name: ")
			date, err := readDate(reader, "Enter the scene date (YYYY-MM-DD): ")
			if err != nil {
				fmt.Printf("\n\033[31mInvalid date.\033[0m\n")
				continue
			}
			resolution := readResolution(reader)

			paths, err := delivery.DownloadScene(area, date, resolution)
			if err != nil {
				fmt.Printf("\n\033[31mError downloading scene: %s\033[0m\n", err.Error())
				notification.SendDiscordErrorNotification(fmt.Sprintf("LandCover CLI\n\nError downloading scene: %s", err.Error()))
				continue
			}
			fmt.Printf("\n\033[32mScene downloaded!\n Sentinel-2: %s\n Sentinel-1: %s\n True color: %s\033[0m\n", paths.S2, paths.S1, paths.TrueColor)
		case 4:
			area := readLine(reader, "Enter the study area name: ")
			resolution := readResolution(reader)

			scenes, err := sentinel.ListDownloadedScenes(area, resolution)
			if err != nil || len(scenes) == 0 {
				fmt.Printf("\n\033[31mNo downloaded scenes found for this area and resolution.\033[0m\n")
				continue
			}
			fmt.Println("\033[32m\nDownloaded scenes:\033[0m")
			for _, sceneDate := range utils.GetSortedKeys(scenes, true) {
				fmt.Printf("\033[32m- %s\033[0m\n", sceneDate.Format("2006-01-02"))
			}

			date, err := readDate(reader, "Enter the scene date (YYYY-MM-DD): ")
			if err != nil {
				fmt.Printf("\n\033[31mInvalid date.\033[0m\n")
				continue
			}

			// NIR/red/green of the optical stack
			pngPath, err := delivery.PreviewScene(area, date, resolution, [3]int{5, 2, 1}, 3.5)
			if err != nil {
				fmt.Printf("\n\033[31mError rendering preview: %s\033[0m\n", err.Error())
				continue
			}
			fmt.Printf("\n\033[32mPreview written to %s\033[0m\n", pngPath)
		case 5:
			fmt.Println("\033[33m\nWarning:\033[0m")
			fmt.Println("\033[33m- The scene must have been downloaded first (option 3).\033[0m")
			fmt.Println("\033[33m- The silhouette sweep is advisory; you will be asked for the final cluster count.\n\033[0m")

			area := readLine(reader, "Enter the study area name: ")
			date, err := readDate(reader, "Enter the scene date (YYYY-MM-DD): ")
			if err != nil {
				fmt.Printf("\n\033[31mInvalid date.\033[0m\n")
				continue
			}
			resolution := readResolution(reader)

			opts := clustering.Options{
				BrightnessNorm: readYesNo(reader, "Apply brightness normalization? (y/N): "),
				PCA:            readYesNo(reader, "Apply PCA transformation? (y/N): "),
			}
			if text := readLine(reader, "Number of training samples (default 10000): "); text != "" {
				if parsed, err := strconv.Atoi(text); err == nil {
					opts.NumSamples = parsed
				}
			}

			tifPath, pngPath, err := delivery.ClusterScene(area, date, resolution, opts, reader, os.Stdout)
			if err != nil {
				fmt.Printf("\n\033[31mError clustering scene: %s\033[0m\n", err.Error())
				notification.SendDiscordErrorNotification(fmt.Sprintf("LandCover CLI\n\nError clustering scene: %s", err.Error()))
				continue
			}

			fmt.Printf("\n\033[32mSuccessful analysis!\n Labeled raster located at: %s\n Cluster map located at: %s\033[0m\n", tifPath, pngPath)
			notification.SendDiscordSuccessNotification(fmt.Sprintf("LandCover CLI\n\nSuccessful analysis!\nLabeled raster located at: %s\nCluster map located at: %s", tifPath, pngPath))
		case 6:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func main() {
	var dataPath string
	for i, arg := range os.Args {
		if strings.HasPrefix(arg, "--data=") {
			dataPath = strings.TrimPrefix(arg, "--data=")
			break
		} else if arg == "--data" && i+1 < len(os.Args) {
			dataPath = os.Args[i+1]
			break
		}
	}

	err := godotenv.Load("../../.env")
	if err != nil {
		err := godotenv.Load("../.env")
		if err != nil {
			godotenv.Load(".env")
		}
	}

	if dataPath != "" {
		os.Setenv("ROOT_PATH", dataPath)
	}
	if os.Getenv("ROOT_PATH") == "" {
		wd, _ := os.Getwd()
		os.Setenv("ROOT_PATH", wd)
		fmt.Printf("\033[33mNo data path specified. Using working directory: %s\033[0m\n", wd)
	}

	godal.RegisterAll()
	initCLI()
}
