package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

func main() {
	serverAddr := flag.String("server", "http://127.0.0.1:8080", "Base URL of the clobd request/response surface")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel', 'book', 'price', 'create-market']")

	marketID := flag.String("market", "", "Market id (compulsory for place/cancel/book/price/create-market)")
	accountID := flag.String("account", "", "Account id (compulsory for place)")
	side := flag.String("side", "yes", "'yes' (bid) or 'no' (ask), place only")
	marketLimit := flag.Bool("market-limit", false, "fill-or-discard remainder, place only")
	price := flag.Float64("price", 0.5, "Unsigned price in [0,1], place only")
	qty := flag.String("qty", "1", "Quantity, place only")
	txID := flag.String("tx-id", "", "tx_id to cancel, cancel only")
	depth := flag.Int("depth", 0, "Book depth, book only (0 = full)")

	flag.Parse()

	if *marketID == "" && *action != "" {
		switch *action {
		case "place", "cancel", "book", "price", "create-market":
			fmt.Println("Error: -market is compulsory.")
			flag.Usage()
			os.Exit(1)
		}
	}

	client := resty.New().SetBaseURL(*serverAddr)

	var err error
	switch strings.ToLower(*action) {
	case "create-market":
		err = doCreateMarket(client, *marketID)
	case "place":
		err = doPlaceOrder(client, *marketID, *accountID, *side, *price, *qty, *marketLimit)
	case "cancel":
		if *txID == "" {
			fmt.Println("Error: -tx-id is required for cancel")
			os.Exit(1)
		}
		err = doCancelOrder(client, *marketID, *txID)
	case "book":
		err = doGetBook(client, *marketID, *depth)
	case "price":
		err = doGetPrice(client, *marketID)
	default:
		fmt.Printf("Unknown action: %s\n", *action)
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func doCreateMarket(client *resty.Client, marketID string) error {
	resp, err := client.R().
		SetBody(map[string]string{"market_id": marketID}).
		Post("/markets")
	if err != nil {
		return err
	}
	fmt.Printf("-> %d: %s\n", resp.StatusCode(), resp.String())
	return nil
}

func doPlaceOrder(client *resty.Client, marketID, accountID, side string, price float64, qty string, marketLimit bool) error {
	signedPrice := price
	if strings.ToLower(side) == "no" {
		signedPrice = -price
	}

	body := map[string]any{
		"tx_id":        uuid.NewString(),
		"market_id":    marketID,
		"account_id":   accountID,
		"market_limit": marketLimit,
		"price_usd":    strconv.FormatFloat(signedPrice, 'f', -1, 64),
		"qty":          qty,
	}

	resp, err := client.R().SetBody(body).Post("/orders")
	if err != nil {
		return err
	}
	fmt.Printf("-> Sent %s order %s %s @ %.2f: %d %s\n", strings.ToUpper(side), marketID, qty, price, resp.StatusCode(), resp.String())
	return nil
}

func doCancelOrder(client *resty.Client, marketID, txID string) error {
	resp, err := client.R().Delete(fmt.Sprintf("/orders/%s/%s", marketID, txID))
	if err != nil {
		return err
	}
	fmt.Printf("-> Cancel %s: %d %s\n", txID, resp.StatusCode(), resp.String())
	return nil
}

func doGetBook(client *resty.Client, marketID string, depth int) error {
	resp, err := client.R().
		SetQueryParam("depth", strconv.Itoa(depth)).
		Get(fmt.Sprintf("/markets/%s/book", marketID))
	if err != nil {
		return err
	}
	fmt.Println(resp.String())
	return nil
}

func doGetPrice(client *resty.Client, marketID string) error {
	resp, err := client.R().Get(fmt.Sprintf("/markets/%s/price", marketID))
	if err != nil {
		return err
	}
	fmt.Println(resp.String())
	return nil
}
