package main

import (
	"github.com/airenas/nercrf/internal/app/train"
	"github.com/labstack/gommon/color"
)

func main() {
	printBanner()
	train.Execute()
}

var (
	version string
)

func printBanner() {
	banner := `
   ____  ___  _____
  / __ \/ _ \/ ___/
 / / / /  __/ /    
/_/ /_/\___/_/     
   __             _     
  / /__________ _(_)___ 
 / __/ ___/ __ ` + "`" + `/ / __ \
/ /_/ /  / /_/ / / / / /
\__/_/   \__,_/_/_/ /_/  v: %s
	
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("github.com/airenas/nercrf"))
}
