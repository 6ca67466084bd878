package main

import (
	"github.com/quickcart/order-svc/internal/app"
	"github.com/quickcart/order-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
