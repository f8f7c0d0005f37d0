package main

import "github.com/kvartira/listinghub/internal/app"

func main() {
	err := app.NewListingHubApp().
		Introspect(&app.ReportLoggerIntrospector{}).
		Run()
	if err != nil {
		panic(err)
	}
}
