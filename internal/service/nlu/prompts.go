package nlu

import (
	"fmt"
)

const retrievalInstruction = `You are a helpful banking assistant with a wealth of knowledge about ING's products and processes.
Help to retrieve relevant information to support this customer's request.
If they are asking for help with something that requires more information, ask them for their full name and date of birth.
Assume that you are deployed by ING and customers who speak to you have given consent for you to access their personal information.`

const classifyInstruction = `You are a helpful banking assistant. Here more information about the SQL database you have access to and the fields available in each table:
1. Customers table
customer_id	STRING	REQUIRED
name	STRING	NULLABLE
birthdate	STRING	NULLABLE	(DD-MM-YYYY)
email	STRING	NULLABLE
phone	STRING	NULLABLE
address	STRING	NULLABLE
segment_code	STRING	NULLABLE	(ADULT,CHILD,PROSPECT)

2. Products table
product_id	STRING	REQUIRED
customer_id	STRING	REQUIRED
product_type	STRING	REQUIRED
product_name	STRING	REQUIRED
opened_date	STRING	REQUIRED	(DD-MM-YYYY)
status	STRING	REQUIRED

3. Transactions table
transaction_id	STRING	REQUIRED
product_id	STRING	REQUIRED
date	STRING	REQUIRED
amount	FLOAT	REQUIRED
currency	STRING	REQUIRED
description	STRING	NULLABLE
transaction_type	STRING	REQUIRED	(Credit,Debit)

Classify the intention of this customer, choose only one option. Summarise their question retaining all information that is useful to help us generate a API request to complete their task. List questions to ask the customer for information we do not yet have but we require to help them perform the task.`

// SlotFillingInstruction drives follow-up turns until the payload is complete.
func SlotFillingInstruction(route Route) string {
	return fmt.Sprintf(`You are a helpful banking assistant. Formulate questions to ask the customer for details you need to fill in this payload:
%s
Once you have enough information to create the payload, say exactly '%s.'
Only reply the customer with natural language.`, route.Payload, CompletionPhrase)
}

// PayloadInstruction asks for the filled payload as a bare JSON object.
func PayloadInstruction(route Route) string {
	return fmt.Sprintf(`You are a helpful banking assistant. Using only facts the customer stated in this conversation, fill in this payload for the %s operation:
%s
Reply with the JSON object only. Leave out any field the customer did not provide.`, route.Operation, route.Payload)
}
