package main

import (
	"github.com/airenas/nercrf/internal/app/tag"
	"github.com/labstack/gommon/color"
)

func main() {
	printBanner()
	tag.Execute()
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
   __            
  / /_____ _____ _
 / __/ __ ` + "`" + `/ __ ` + "`" + `/
/ /_/ /_/ / /_/ / 
\__/\__,_/\__, /  v: %s
         /____/   
%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("github.com/airenas/nercrf"))
}
