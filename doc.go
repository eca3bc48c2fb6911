// Package storeqa answers storefront customer questions from the shop's own pages.
//
// Questions are classified by intent. Sizing questions that carry measurements are answered
// from the size chart; everything else is grounded in hybrid retrieval (vector search over
// page chunks alongside keyword search over pages and chunks) and phrased by a chat
// completion model. Without evidence the reply is a fixed fallback, never a guess.
//
// # Usage
//
//	client, err := storeqa.New(
//	    storeqa.WithRedis("localhost:6379", ""),
//	    storeqa.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	_, _ = client.Seed(ctx, "https://shop.example/pages/returns")
//	reply, _ := client.Reply(ctx, "Can I return a swimsuit?")
//	fmt.Println(reply.Text)
//
//	size, _ := client.RecommendSize(86, 70, 96) // centimeters
//	fmt.Println(size.Text)
package storeqa
