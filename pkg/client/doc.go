// Package client is the cardledger Go SDK.
//
// It wraps the ledgerd HTTP API: registering cards, managing verified
// graders, recording grades, and tracking card ownership.
//
// # Connecting
//
// Every mutating call is made on behalf of a principal, sent in the
// X-Principal header. Reads are public:
//
//	c, err := client.New("http://localhost:8080",
//	    client.WithPrincipal("SP1ADMIN000000000000000000000000000"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Registering and grading a card
//
//	id, _ := c.RegisterCard(ctx, client.CardInput{
//	    Name:   "Charizard",
//	    Series: "Base Set",
//	})
//	_ = c.AddGrader(ctx, "SP1GRADER000000000000000000000000001")
//
//	grader := c.As("SP1GRADER000000000000000000000000001")
//	_, err = grader.GradeCard(ctx, id, 9, "Near mint")
//
// # Errors
//
// Rejections by the ledger are returned as *APIError and keep the numeric
// code the ledger assigned (100 not authorized, 101 already exists / not
// found, 102 not verified / not owner):
//
//	if code, ok := client.CodeOf(err); ok && code == 102 {
//	    // caller is not the current owner
//	}
//
// Lookups of records that do not exist return found=false and a nil error.
package client
