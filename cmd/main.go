package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/airbusgeo/godal"
	"github.com/common-nighthawk/go-figure"
	"github.com/earth-window/earth-window-dataset-poc/cmd/commands"
	"github.com/earth-window/earth-window-dataset-poc/internal/notification"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
)

func printBanner() {
	figure1 := figure.NewFigure("Earth", "isometric1", true)
	figure2 := figure.NewFigure("Window", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3) // 3 levels up is often the panic source
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("Earth Window CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
			os.Exit(2)
		}
	}()

	if err := godotenv.Load("../../.env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			godotenv.Load(".env")
		}
	}

	godal.RegisterAll()
	printBanner()

	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Printf("\n\033[31mError: %s\033[0m\n", err.Error())
		os.Exit(1)
	}
}
