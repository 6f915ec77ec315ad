package program

// CreditsID is the identifier of the built-in credits program.
const CreditsID = "credits.aleo"

const creditsSource = `program credits.aleo;

mapping account:
    key as address.public;
    value as u64.public;

record credits:
    owner as address.private;
    microcredits as u64.private;

function transfer_private:
    input r0 as credits.record;
    input r1 as address.private;
    input r2 as u64.private;
    sub r0.microcredits r2 into r3;
    cast r1 r2 into r4 as credits.record;
    cast r0.owner r3 into r5 as credits.record;
    output r4 as credits.record;
    output r5 as credits.record;

function transfer_public:
    input r0 as address.public;
    input r1 as u64.public;
    async transfer_public self.caller r0 r1 into f0;

finalize transfer_public:
    get.or_use account[r0] 0u64 into r3;
    sub r3 r2 into r4;
    set r4 into account[r0];
    get.or_use account[r1] 0u64 into r5;
    add r5 r2 into r6;
    set r6 into account[r1];

function transfer_private_to_public:
    input r0 as credits.record;
    input r1 as address.public;
    input r2 as u64.public;
    sub r0.microcredits r2 into r3;
    cast r0.owner r3 into r4 as credits.record;
    async transfer_private_to_public r1 r2 into f0;
    output r4 as credits.record;

finalize transfer_private_to_public:
    get.or_use account[r0] 0u64 into r2;
    add r2 r1 into r3;
    set r3 into account[r0];

function transfer_public_to_private:
    input r0 as address.private;
    input r1 as u64.private;
    cast r0 r1 into r2 as credits.record;
    async transfer_public_to_private self.caller r1 into f0;
    output r2 as credits.record;

finalize transfer_public_to_private:
    get account[r0] into r2;
    sub r2 r1 into r3;
    set r3 into account[r0];

function fee:
    input r0 as credits.record;
    input r1 as u64.public;
    input r2 as field.public;
    sub r0.microcredits r1 into r3;
    cast r0.owner r3 into r4 as credits.record;
    output r4 as credits.record;
`

// Credits returns the built-in credits program. The source is a
// compile-time constant; parsing it cannot fail.
func Credits() *Program {
	p, err := Parse(creditsSource)
	if err != nil {
		panic("program: built-in credits program failed to parse: " + err.Error())
	}
	return p
}
