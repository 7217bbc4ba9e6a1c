/*
Package iso7816 talks to a smart card in ISO/IEC 7816-4 command/response units.

It covers the subset a payment terminal needs to read an EMV card: encoding of
command APDUs (short and extended lengths), decoding of response APDUs and their
status words, builders for SELECT, READ RECORD, GET DATA and GET RESPONSE, and a
Client that hides the T=0 transport procedures ('61 XX' and '6C XX') behind a
single Send call.

# Exchanges

The communication is strictly synchronous: one command, one response. A single
logical request may still take several physical exchanges:

  - '61 XX': XX more bytes are waiting; the Client fetches them with GET RESPONSE.
  - '6C XX': the expected length was wrong; the Client repeats the command once with Le = XX.

Send returns a Trace holding every exchange. The outcome of the request is the
status of the last one:

	client := iso7816.NewClient(card)
	cla, _ := iso7816.NewClass(0x00)

	trace, err := client.Send(iso7816.ReadRecord(cla, 1, 1))
	if err != nil {
	    return err // transport failure
	}
	if trace.IsSuccess() {
	    record := trace.Data()
	    ...
	}

	result, _ := iso7816.NewResult(trace)
	fmt.Println(result.Describe())
*/
package iso7816
